package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/engine"
	testutils "github.com/engramco/engram/pkg/utils/test"
	"github.com/engramco/engram/pkg/vector/inmemory"
)

var _ = Describe("Ask tool", func() {
	var (
		server *Server
		eng    *engine.Engine
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		eng, err = engine.New(engine.Config{
			Store:     inmemory.NewStore(),
			Embedder:  testutils.NewMockEmbedder(),
			Generator: testutils.NewMockGenerator("Paris"),
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{Engine: eng, Logger: zap.NewNop()})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a question", func() {
		result, output, err := server.handleAsk(ctx, nil, AskInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())
		Expect(output).To(Equal(AskOutput{}))

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(Equal("question is required"))
	})

	It("rejects unknown modes", func() {
		result, _, err := server.handleAsk(ctx, nil, AskInput{Question: "hm?", Mode: "telepathy"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(ContainSubstring("unknown mode"))
	})

	It("defaults to mode both", func() {
		_, err := eng.AddDocument(ctx, "France's capital is Paris")
		Expect(err).NotTo(HaveOccurred())

		result, output, err := server.handleAsk(ctx, nil, AskInput{Question: "capital of France?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())
		Expect(output.Mode).To(Equal(string(engine.ModeBoth)))
		Expect(output.Answer).To(Equal("Paris"))
		Expect(output.Question).To(Equal("capital of France?"))
	})

	It("reports empty knowledge as a tool error", func() {
		result, _, err := server.handleAsk(ctx, nil, AskInput{Question: "anything?", Mode: "long-term-only"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(ContainSubstring("no knowledge available"))
	})

	It("appends the exchange to short-term memory for mode both", func() {
		_, err := eng.AddDocument(ctx, "a fact")
		Expect(err).NotTo(HaveOccurred())

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything?", Mode: "both"})
		Expect(err).NotTo(HaveOccurred())

		export, err := eng.ExportMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(export.ShortTerm).To(HaveLen(2))
		Expect(export.ShortTerm[0].Role).To(Equal("user"))
		Expect(export.ShortTerm[1].Content).To(Equal("Paris"))
	})

	It("leaves the conversation buffer untouched for long-term-only", func() {
		_, err := eng.AddDocument(ctx, "a fact")
		Expect(err).NotTo(HaveOccurred())

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything?", Mode: "long-term-only"})
		Expect(err).NotTo(HaveOccurred())

		export, err := eng.ExportMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(export.ShortTerm).To(BeEmpty())
	})
})
