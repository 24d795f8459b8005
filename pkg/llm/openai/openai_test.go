package openai_test

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
	"github.com/engramco/engram/pkg/llm/openai"
)

var _ = Describe("OpenAI Generator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewGenerator", func() {
		It("requires an API key", func() {
			_, err := openai.NewGenerator(openai.Config{}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("API key"))
		})
	})

	Describe("Generate", func() {
		It("returns the first choice's content", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/chat/completions"))

				var req struct {
					Model    string `json:"model"`
					Messages []struct {
						Role    string `json:"role"`
						Content string `json:"content"`
					} `json:"messages"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Messages).To(HaveLen(1))
				Expect(req.Messages[0].Role).To(Equal("user"))
				Expect(req.Messages[0].Content).To(Equal("what is 2+2?"))

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"id":      "chatcmpl-1",
					"object":  "chat.completion",
					"created": 1700000000,
					"model":   req.Model,
					"choices": []map[string]any{
						{
							"index":         0,
							"message":       map[string]string{"role": "assistant", "content": "four"},
							"finish_reason": "stop",
						},
					},
					"usage": map[string]int{"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6},
				})
			}))
			defer server.Close()

			g, err := openai.NewGenerator(openai.Config{
				APIKey:  "test-key",
				BaseURL: server.URL + "/v1",
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer g.Close()

			text, err := g.Generate(ctx, "what is 2+2?")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("four"))
		})

		It("surfaces the provider fault after exhausting retries", func() {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"message": "boom", "type": "server_error"},
				})
			}))
			defer server.Close()

			g, err := openai.NewGenerator(openai.Config{
				APIKey:  "test-key",
				BaseURL: server.URL + "/v1",
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer g.Close()

			_, err = g.Generate(ctx, "doomed")
			Expect(err).To(MatchError(llm.ErrProvider))
			Expect(calls.Load()).To(Equal(int32(3)))
		})
	})

	Describe("interface compliance", func() {
		It("satisfies llm.Generator", func() {
			g, err := openai.NewGenerator(openai.Config{APIKey: "k"}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			var _ llm.Generator = g
		})
	})
})
