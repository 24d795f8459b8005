package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/llm"
	"github.com/engramco/engram/pkg/llm/ollama"
)

func newGenerator(baseURL string) *ollama.Generator {
	g, err := ollama.NewGenerator(ollama.Config{BaseURL: baseURL}, zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return g
}

var _ = Describe("Ollama Generator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Generate", func() {
		It("posts a non-streaming generate request and returns the completion", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/generate"))

				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["model"]).To(Equal(ollama.DefaultModel))
				Expect(req["prompt"]).To(Equal("why is the sky blue?"))
				Expect(req["stream"]).To(Equal(false))

				_ = json.NewEncoder(w).Encode(map[string]any{
					"response": "Rayleigh scattering.",
					"done":     true,
				})
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			text, err := g.Generate(ctx, "why is the sky blue?")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Rayleigh scattering."))
		})

		It("retries transient failures until one attempt succeeds", func() {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if calls.Add(1) < 2 {
					http.Error(w, "loading model", http.StatusInternalServerError)
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			text, err := g.Generate(ctx, "flaky")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("ok"))
			Expect(calls.Load()).To(Equal(int32(2)))
		})

		It("surfaces the provider fault after exhausting retries", func() {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				http.Error(w, "model not found", http.StatusNotFound)
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			_, err := g.Generate(ctx, "doomed")
			Expect(err).To(MatchError(llm.ErrProvider))
			Expect(err.Error()).To(ContainSubstring("model not found"))
			Expect(calls.Load()).To(Equal(int32(3)))
		})

		It("stops retrying when the context is canceled", func() {
			cancelCtx, cancel := context.WithCancel(ctx)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				cancel()
				http.Error(w, "try later", http.StatusInternalServerError)
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			_, err := g.Generate(cancelCtx, "canceled")
			Expect(err).To(MatchError(llm.ErrProvider))
			Expect(err.Error()).To(ContainSubstring("context canceled"))
		})
	})

	Describe("interface compliance", func() {
		It("satisfies llm.Generator", func() {
			var _ llm.Generator = newGenerator("http://localhost:11434")
		})
	})
})
