package postgres_test

import (
	"context"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/vector"
	"github.com/engramco/engram/pkg/vector/postgres"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("ENGRAM_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("ENGRAM_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Store", func() {
	var (
		store *postgres.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn := connStr()

		var err error
		store, err = postgres.NewStore(ctx, postgres.Config{ConnString: dsn}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		// Clean all documents before each test for isolation.
		Expect(store.Clear(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("NewStore", func() {
		It("creates a store with a valid connection string", func() {
			dsn := connStr()
			s, err := postgres.NewStore(context.Background(), postgres.Config{ConnString: dsn}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()
		})

		It("returns an error for an empty connection string", func() {
			_, err := postgres.NewStore(context.Background(), postgres.Config{}, zap.NewNop())
			Expect(err).To(MatchError(vector.ErrConnection))
		})

		It("returns an error for an unreachable server", func() {
			_, err := postgres.NewStore(context.Background(), postgres.Config{
				ConnString: "host=invalid port=9999 user=bad dbname=bad sslmode=disable connect_timeout=1",
			}, zap.NewNop())
			Expect(err).To(MatchError(vector.ErrConnection))
			fmt.Fprintf(GinkgoWriter, "expected error: %v\n", err)
		})
	})

	Describe("Insert and GetAll", func() {
		It("stores and retrieves documents in insertion order", func() {
			Expect(store.Insert(ctx, "first document", []float32{0.25, -1.5, 3.0})).To(Succeed())
			Expect(store.Insert(ctx, "second document", []float32{1.0, 2.0, 3.0})).To(Succeed())

			docs, err := store.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Content).To(Equal("first document"))
			Expect(docs[0].Embedding).To(Equal([]float32{0.25, -1.5, 3.0}))
			Expect(docs[1].Content).To(Equal("second document"))
			Expect(docs[1].ID).To(BeNumerically(">", docs[0].ID))
		})

		It("rejects empty content", func() {
			err := store.Insert(ctx, "   ", []float32{1, 2, 3})
			Expect(err).To(MatchError(vector.ErrValidation))
		})

		It("rejects an empty embedding", func() {
			err := store.Insert(ctx, "content", nil)
			Expect(err).To(MatchError(vector.ErrValidation))
		})

		It("rejects embeddings whose dimensionality differs from the store", func() {
			Expect(store.Insert(ctx, "three dims", []float32{1, 2, 3})).To(Succeed())

			err := store.Insert(ctx, "four dims", []float32{1, 2, 3, 4})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Count", func() {
		It("returns zero for an empty store", func() {
			n, err := store.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})

		It("counts inserted documents", func() {
			Expect(store.Insert(ctx, "one", []float32{1, 0})).To(Succeed())
			Expect(store.Insert(ctx, "two", []float32{0, 1})).To(Succeed())

			n, err := store.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("Clear", func() {
		It("removes all documents", func() {
			Expect(store.Insert(ctx, "doomed", []float32{1, 2})).To(Succeed())

			Expect(store.Clear(ctx)).To(Succeed())

			n, err := store.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})

		It("resets the dimensionality constraint", func() {
			Expect(store.Insert(ctx, "two dims", []float32{1, 2})).To(Succeed())
			Expect(store.Clear(ctx)).To(Succeed())

			Expect(store.Insert(ctx, "three dims", []float32{1, 2, 3})).To(Succeed())
		})
	})
})
