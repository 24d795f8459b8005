package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/engramco/engram/pkg/eventstream"
	"github.com/engramco/engram/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		Expect(nop.NewPublisher()).NotTo(BeNil())
	})

	It("returns ErrNilEvent for nil events", func() {
		p := nop.NewPublisher()
		err := p.Publish(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilEvent))
	})

	It("succeeds for non-nil events", func() {
		p := nop.NewPublisher()
		err := p.Publish(context.Background(), eventstream.NewMemoryResetEvent())
		Expect(err).NotTo(HaveOccurred())
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher().Close()).To(Succeed())
	})
})
