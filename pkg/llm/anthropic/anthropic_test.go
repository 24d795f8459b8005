package anthropic_test

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
	"github.com/engramco/engram/pkg/llm/anthropic"
)

func newGenerator(baseURL string) *anthropic.Generator {
	g, err := anthropic.NewGenerator(anthropic.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
	}, zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return g
}

var _ = Describe("Anthropic Generator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewGenerator", func() {
		It("requires an API key", func() {
			_, err := anthropic.NewGenerator(anthropic.Config{}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("API key"))
		})
	})

	Describe("Generate", func() {
		It("sends the prompt as a single user message and joins text blocks", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/v1/messages"))

				var req struct {
					Model     string `json:"model"`
					MaxTokens int64  `json:"max_tokens"`
					Messages  []struct {
						Role string `json:"role"`
					} `json:"messages"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Model).To(Equal(anthropic.DefaultModel))
				Expect(req.MaxTokens).To(Equal(int64(anthropic.DefaultMaxTokens)))
				Expect(req.Messages).To(HaveLen(1))
				Expect(req.Messages[0].Role).To(Equal("user"))

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"id":    "msg_01",
					"type":  "message",
					"role":  "assistant",
					"model": anthropic.DefaultModel,
					"content": []map[string]any{
						{"type": "text", "text": "the answer "},
						{"type": "text", "text": "is four"},
					},
					"stop_reason":   "end_turn",
					"stop_sequence": nil,
					"usage":         map[string]int{"input_tokens": 9, "output_tokens": 4},
				})
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			text, err := g.Generate(ctx, "what is 2+2?")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("the answer is four"))
		})

		It("surfaces the provider fault after exhausting retries", func() {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]string{"type": "api_error", "message": "overloaded"},
				})
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			_, err := g.Generate(ctx, "doomed")
			Expect(err).To(MatchError(llm.ErrProvider))
			Expect(calls.Load()).To(Equal(int32(3)))
		})

		It("rejects a completion with no text blocks", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"id":            "msg_02",
					"type":          "message",
					"role":          "assistant",
					"model":         anthropic.DefaultModel,
					"content":       []map[string]any{},
					"stop_reason":   "end_turn",
					"stop_sequence": nil,
					"usage":         map[string]int{"input_tokens": 1, "output_tokens": 0},
				})
			}))
			defer server.Close()

			g := newGenerator(server.URL)
			defer g.Close()

			_, err := g.Generate(ctx, "empty")
			Expect(err).To(MatchError(llm.ErrProvider))
			Expect(err.Error()).To(ContainSubstring("no text"))
		})
	})

	Describe("interface compliance", func() {
		It("satisfies llm.Generator", func() {
			var _ llm.Generator = newGenerator("http://localhost:9999")
		})
	})
})
