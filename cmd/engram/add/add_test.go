package addcmder_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	engramcmder "github.com/engramco/engram/cmd/engram"
	addcmder "github.com/engramco/engram/cmd/engram/add"
	"github.com/engramco/engram/pkg/vector/sqlite"
)

var _ = Describe("NewAddCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := addcmder.NewAddCmd()
		Expect(cmd.Use).To(Equal("add [text...]"))
	})

	It("has a --file flag with shorthand", func() {
		cmd := addcmder.NewAddCmd()
		f := cmd.Flags().Lookup("file")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("f"))
	})

	It("carries the store and embedding flags", func() {
		cmd := addcmder.NewAddCmd()
		for _, name := range []string{"storage-driver", "db", "dsn", "embedding-provider", "embedding-model", "embedding-dimensions"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("Add command execution", func() {
	var (
		tmpDir  string
		origDir string
		dbPath  string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "engram-add-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Local .engram dir keeps config resolution inside the tmpdir
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".engram"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		dbPath = filepath.Join(tmpDir, "test.db")
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	// storeContents opens the sqlite database directly and returns every
	// stored document content.
	storeContents := func() []string {
		store, err := sqlite.NewStore(sqlite.Config{Path: dbPath}, zap.NewNop())
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		defer func() { _ = store.Close() }()

		docs, err := store.GetAll(context.Background())
		ExpectWithOffset(1, err).NotTo(HaveOccurred())

		contents := make([]string, 0, len(docs))
		for _, doc := range docs {
			contents = append(contents, doc.Content)
		}
		return contents
	}

	It("joins text arguments into a single document", func() {
		cmd := engramcmder.NewEngramCmd()
		cmd.SetArgs([]string{"add", "the", "sky", "is", "blue", "--db", dbPath, "--embedding-provider", "hash"})
		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())

		Expect(storeContents()).To(Equal([]string{"the sky is blue"}))
	})

	It("ingests one document per non-blank file line", func() {
		notesPath := filepath.Join(tmpDir, "notes.txt")
		err := os.WriteFile(notesPath, []byte("alpha\n\nbeta\n   \ngamma\n"), 0o644)
		Expect(err).NotTo(HaveOccurred())

		cmd := engramcmder.NewEngramCmd()
		cmd.SetArgs([]string{"add", "--file", notesPath, "--db", dbPath, "--embedding-provider", "hash"})
		err = cmd.Execute()
		Expect(err).NotTo(HaveOccurred())

		Expect(storeContents()).To(Equal([]string{"alpha", "beta", "gamma"}))
	})

	It("errors when there is nothing to add", func() {
		cmd := engramcmder.NewEngramCmd()
		cmd.SetArgs([]string{"add", "--storage-driver", "inmemory", "--embedding-provider", "hash"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("nothing to add"))
	})

	It("errors when the file does not exist", func() {
		cmd := engramcmder.NewEngramCmd()
		cmd.SetArgs([]string{"add", "--file", filepath.Join(tmpDir, "missing.txt"), "--storage-driver", "inmemory", "--embedding-provider", "hash"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})

	It("reports rejected documents without failing", func() {
		cmd := engramcmder.NewEngramCmd()
		cmd.SetArgs([]string{"add", `{"error": "rate limited", "status": 429}`, "--db", dbPath, "--embedding-provider", "hash"})
		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())

		Expect(storeContents()).To(BeEmpty())
	})
})
