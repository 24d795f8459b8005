package memory_test

import (
	"fmt"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/engramco/engram/pkg/memory"
)

var _ = Describe("Buffer", func() {
	Describe("NewBuffer", func() {
		It("returns a non-nil empty buffer", func() {
			b := memory.NewBuffer(10)
			Expect(b).NotTo(BeNil())
			Expect(b.Len()).To(BeZero())
		})

		It("falls back to the default ceiling for non-positive values", func() {
			b := memory.NewBuffer(0)
			for i := 1; i <= memory.DefaultMaxTurns+1; i++ {
				b.Append(memory.RoleUser, fmt.Sprintf("T%d", i))
			}

			Expect(b.Len()).To(Equal(memory.DefaultMaxTurns))

			// T1 was evicted to make room for the 51st turn.
			turns := b.Snapshot()
			Expect(turns[0].Content).To(Equal("T2"))
			Expect(turns[len(turns)-1].Content).To(Equal(fmt.Sprintf("T%d", memory.DefaultMaxTurns+1)))
		})
	})

	Describe("Append", func() {
		It("keeps turns in insertion order", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "hello")
			b.Append(memory.RoleAssistant, "hi there")

			turns := b.Snapshot()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0]).To(Equal(memory.Turn{Role: memory.RoleUser, Content: "hello"}))
			Expect(turns[1]).To(Equal(memory.Turn{Role: memory.RoleAssistant, Content: "hi there"}))
		})

		It("evicts oldest turns past the ceiling", func() {
			b := memory.NewBuffer(3)
			for i := 1; i <= 5; i++ {
				b.Append(memory.RoleUser, fmt.Sprintf("T%d", i))
			}

			Expect(b.Len()).To(Equal(3))

			turns := b.Snapshot()
			Expect(turns[0].Content).To(Equal("T3"))
			Expect(turns[1].Content).To(Equal("T4"))
			Expect(turns[2].Content).To(Equal("T5"))
		})
	})

	Describe("EstimateTokens", func() {
		It("charges one token per four bytes, rounding up", func() {
			Expect(memory.EstimateTokens("")).To(BeZero())
			Expect(memory.EstimateTokens("a")).To(Equal(1))
			Expect(memory.EstimateTokens("abcd")).To(Equal(1))
			Expect(memory.EstimateTokens("abcde")).To(Equal(2))
		})
	})

	Describe("Render", func() {
		It("returns an empty string for an empty buffer", func() {
			b := memory.NewBuffer(10)
			Expect(b.Render(100)).To(Equal(""))
		})

		It("returns an empty string for a zero budget", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "hello")
			Expect(b.Render(0)).To(Equal(""))
		})

		It("renders turns chronologically with upper-cased roles", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "hello")
			b.Append(memory.RoleAssistant, "hi there")

			Expect(b.Render(100)).To(Equal("USER: hello\nASSISTANT: hi there"))
		})

		It("keeps the most recent turns when the budget is tight", func() {
			b := memory.NewBuffer(20)
			for i := 1; i <= 10; i++ {
				b.Append(memory.RoleUser, fmt.Sprintf("T%d", i))
			}

			// "USER: T1".."USER: T9" cost 2 tokens each, "USER: T10"
			// costs 3. A budget of 7 fits exactly the last three turns.
			Expect(b.Render(7)).To(Equal("USER: T8\nUSER: T9\nUSER: T10"))
		})

		It("includes a turn whose cost lands exactly on the budget", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "ab") // "USER: ab" costs 2 tokens

			Expect(b.Render(2)).To(Equal("USER: ab"))
			Expect(b.Render(1)).To(Equal(""))
		})

		It("stops at the first turn that overflows, even if older turns would fit", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "hi")
			b.Append(memory.RoleAssistant, strings.Repeat("x", 100))

			// The newest turn alone costs 28 tokens. Selection stops
			// there rather than skipping it to reach the cheap old turn.
			Expect(b.Render(10)).To(Equal(""))
		})
	})

	Describe("TokenCount", func() {
		It("is zero for an empty buffer", func() {
			Expect(memory.NewBuffer(10).TokenCount()).To(BeZero())
		})

		It("sums the rendered cost of every turn", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "ab")   // "USER: ab" costs 2
			b.Append(memory.RoleUser, "abcd") // "USER: abcd" costs 3

			Expect(b.TokenCount()).To(Equal(5))
		})
	})

	Describe("Snapshot", func() {
		It("returns a copy so callers cannot mutate internal state", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "original")

			turns := b.Snapshot()
			turns[0].Content = "mutated"

			Expect(b.Snapshot()[0].Content).To(Equal("original"))
		})

		It("returns an empty slice for an empty buffer", func() {
			Expect(memory.NewBuffer(10).Snapshot()).To(BeEmpty())
		})
	})

	Describe("Clear", func() {
		It("drops all turns", func() {
			b := memory.NewBuffer(10)
			b.Append(memory.RoleUser, "hello")
			b.Append(memory.RoleAssistant, "hi")

			b.Clear()

			Expect(b.Len()).To(BeZero())
			Expect(b.Render(100)).To(Equal(""))
		})

		It("is idempotent", func() {
			b := memory.NewBuffer(10)
			b.Clear()
			b.Clear()
			Expect(b.Len()).To(BeZero())
		})
	})

	Describe("concurrent access", func() {
		It("handles simultaneous appends and reads", func() {
			b := memory.NewBuffer(100)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func(n int) {
					defer GinkgoRecover()
					defer wg.Done()
					b.Append(memory.RoleUser, fmt.Sprintf("turn %d", n))
				}(i)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_ = b.Render(50)
					_ = b.TokenCount()
				}()
			}
			wg.Wait()

			Expect(b.Len()).To(Equal(8))
		})
	})
})
