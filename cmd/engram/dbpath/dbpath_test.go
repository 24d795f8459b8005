package dbpathcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	dbpathcmder "github.com/engramco/engram/cmd/engram/dbpath"
)

var _ = Describe("NewDBPathCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := dbpathcmder.NewDBPathCmd()
		Expect(cmd.Use).To(Equal("dbpath"))
	})

	It("rejects any arguments", func() {
		cmd := dbpathcmder.NewDBPathCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})

	It("has a --db flag", func() {
		cmd := dbpathcmder.NewDBPathCmd()
		f := cmd.Flags().Lookup("db")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("DBPath command execution", func() {
	var (
		origCwd    string
		origDB     string
		origSQLite string
	)

	BeforeEach(func() {
		origDB = os.Getenv("ENGRAM_DB")
		origSQLite = os.Getenv("ENGRAM_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("ENGRAM_DB", origDB)).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", origSQLite)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("runs without error with a --db override", func() {
		cmd := dbpathcmder.NewDBPathCmd()
		cmd.SetArgs([]string{"--db", "/tmp/override.db"})
		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs without error when ENGRAM_SQLITE points at a path", func() {
		Expect(os.Setenv("ENGRAM_SQLITE", "/tmp/custom.db")).To(Succeed())

		cmd := dbpathcmder.NewDBPathCmd()
		cmd.SetArgs([]string{})
		err := cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("resolves a local engram.db when present", func() {
		tmpDir, err := os.MkdirTemp("", "engram-dbpath-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		dbPath := filepath.Join(tmpDir, "engram.db")
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		cmd := dbpathcmder.NewDBPathCmd()
		cmd.SetArgs([]string{})
		err = cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})
})
