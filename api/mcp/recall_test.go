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

var _ = Describe("Recall tool", func() {
	var (
		server   *Server
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings = map[string][]float32{
			"the sky is blue":    {1, 0, 0},
			"grass is green":     {0, 1, 0},
			"what color is sky?": {1, 0, 0},
		}

		eng, err := engine.New(engine.Config{
			Store:     inmemory.NewStore(),
			Embedder:  embedder,
			Generator: testutils.NewMockGenerator("answer"),
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{Engine: eng, Logger: zap.NewNop()})
		Expect(err).NotTo(HaveOccurred())

		_, err = eng.AddDocument(ctx, "the sky is blue")
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.AddDocument(ctx, "grass is green")
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a query", func() {
		result, output, err := server.handleRecall(ctx, nil, RecallInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())
		Expect(output).To(Equal(RecallOutput{}))

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(Equal("query is required"))
	})

	It("returns the best match first with its score", func() {
		result, output, err := server.handleRecall(ctx, nil, RecallInput{Query: "what color is sky?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.Query).To(Equal("what color is sky?"))
		Expect(output.Count).To(Equal(2))
		Expect(output.Results[0].Content).To(Equal("the sky is blue"))
		Expect(output.Results[0].Score).To(BeNumerically(">", output.Results[1].Score))
	})

	It("honors top_k", func() {
		_, output, err := server.handleRecall(ctx, nil, RecallInput{Query: "what color is sky?", TopK: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Results).To(HaveLen(1))
		Expect(output.Count).To(Equal(1))
	})

	It("serializes results into the text block", func() {
		result, _, err := server.handleRecall(ctx, nil, RecallInput{Query: "what color is sky?", TopK: 1})
		Expect(err).NotTo(HaveOccurred())

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(ContainSubstring(`"content":"the sky is blue"`))
		Expect(text).To(ContainSubstring(`"count":1`))
	})

	It("reports embedding failures as tool errors", func() {
		embedder.FailOn = "doomed query"

		result, _, err := server.handleRecall(ctx, nil, RecallInput{Query: "doomed query"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text := result.Content[0].(*mcp.TextContent).Text
		Expect(text).To(ContainSubstring("Recall failed"))
	})
})
