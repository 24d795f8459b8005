package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/engramco/engram/pkg/dotdir"
)

var _ = Describe("ResolveDBPath", func() {
	var (
		origHome   string
		origXDG    string
		origDB     string
		origSQLite string
		origCwd    string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origDB = os.Getenv("ENGRAM_DB")
		origSQLite = os.Getenv("ENGRAM_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", origDB)).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", origSQLite)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers the override when given", func() {
		Expect(os.Setenv("ENGRAM_SQLITE", "/tmp/env.db")).To(Succeed())

		path, err := dotdir.ResolveDBPath("/tmp/override.db")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/override.db"))
	})

	It("prefers ENGRAM_SQLITE when set", func() {
		Expect(os.Setenv("ENGRAM_SQLITE", "/tmp/custom.db")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())

		path, err := dotdir.ResolveDBPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("falls back to ENGRAM_DB when ENGRAM_SQLITE is unset", func() {
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "/tmp/fallback.db")).To(Succeed())

		path, err := dotdir.ResolveDBPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/fallback.db"))
	})

	It("resolves ~/.engram/engram.db when present", func() {
		homeDir, err := os.MkdirTemp("", "engram-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})

		tmpDir, err := os.MkdirTemp("", "engram-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		dbPath := filepath.Join(homeDir, ".engram", "engram.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := dotdir.ResolveDBPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("defaults to engram.db inside the resolved .engram dir when nothing exists", func() {
		homeDir, err := os.MkdirTemp("", "engram-home-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(homeDir)
		})
		homeDir, err = filepath.EvalSymlinks(homeDir)
		Expect(err).NotTo(HaveOccurred())

		tmpDir, err := os.MkdirTemp("", "engram-cwd-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_DB", "")).To(Succeed())
		Expect(os.Setenv("ENGRAM_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		path, err := dotdir.ResolveDBPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".engram", "engram.db")))

		// The .engram dir itself gets created so first runs can open the DB.
		info, err := os.Stat(filepath.Join(homeDir, ".engram"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})
})
