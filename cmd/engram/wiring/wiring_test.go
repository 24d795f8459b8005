package wiring_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/engine"
)

var _ = Describe("Flags registry", func() {
	It("covers every flag constant", func() {
		for _, key := range []string{
			config.FlagListen,
			config.FlagEnableMCP,
			config.FlagStorageDriver,
			config.FlagDBPath,
			config.FlagStorageDSN,
			config.FlagEmbeddingProv,
			config.FlagEmbeddingBaseURL,
			config.FlagEmbeddingModel,
			config.FlagEmbeddingDims,
			config.FlagGenerationProv,
			config.FlagGenerationBaseURL,
			config.FlagGenerationModel,
			config.FlagSystemPrompt,
			config.FlagShortTermBudget,
			config.FlagLongTermBudget,
		} {
			Expect(wiring.Flags).To(HaveKey(key))
		}
	})

	It("maps every flag to a valid config key", func() {
		for registryKey, def := range wiring.Flags {
			Expect(config.IsValidConfigKey(def.ViperKey)).To(BeTrue(),
				"flag %q points at unknown config key %q", registryKey, def.ViperKey)
		}
	})

	It("keeps flag names unique", func() {
		seen := make(map[string]string, len(wiring.Flags))
		for registryKey, def := range wiring.Flags {
			Expect(seen).NotTo(HaveKey(def.Name),
				"flag name %q used by both %q and %q", def.Name, seen[def.Name], registryKey)
			seen[def.Name] = registryKey
		}
	})
})

var _ = Describe("StorePath", func() {
	It("returns the configured sqlite path as-is", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.Path = "/tmp/custom.db"

		path, err := wiring.StorePath(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("returns empty for non-sqlite drivers", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"

		path, err := wiring.StorePath(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeEmpty())
	})
})

var _ = Describe("ResolveConfig", func() {
	var (
		tmpDir     string
		origDir    string
		origDriver string
	)

	// resolveWith executes a throwaway command carrying the store flags and
	// returns the config ResolveConfig produced for it.
	resolveWith := func(args []string) (*config.Config, error) {
		var cfg *config.Config

		cmd := &cobra.Command{
			Use: "probe",
			RunE: func(cmd *cobra.Command, _ []string) error {
				var err error
				cfg, err = wiring.ResolveConfig(cmd, wiring.StoreFlagKeys)
				return err
			},
		}
		cmd.Flags().String("config", "", "")

		var driver, db, dsn string
		config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &driver)
		config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &db)
		config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &dsn)

		cmd.SetArgs(args)
		if err := cmd.Execute(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	writeConfig := func(dir, contents string) {
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "engram.toml"), []byte(contents), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "engram-wiring-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		origDriver = os.Getenv("ENGRAM_STORAGE_DRIVER")
		Expect(os.Unsetenv("ENGRAM_STORAGE_DRIVER")).To(Succeed())

		// Create a local .engram dir so resolution never leaves the tmpdir
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".engram"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Setenv("ENGRAM_STORAGE_DRIVER", origDriver)).To(Succeed())
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("falls back to defaults when no config file exists", func() {
		cfg, err := resolveWith(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("sqlite"))
		Expect(cfg.API.ListenAddr).To(Equal(":8080"))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))
	})

	It("reads values from engram.toml", func() {
		writeConfig(filepath.Join(tmpDir, ".engram"), "[storage]\ndriver = \"inmemory\"\n")

		cfg, err := resolveWith(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("inmemory"))
	})

	It("lets flags override file values", func() {
		writeConfig(filepath.Join(tmpDir, ".engram"), "[storage]\ndriver = \"postgres\"\n")

		cfg, err := resolveWith([]string{"--storage-driver", "inmemory"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("inmemory"))
	})

	It("lets environment variables override file values", func() {
		writeConfig(filepath.Join(tmpDir, ".engram"), "[storage]\ndriver = \"postgres\"\n")
		Expect(os.Setenv("ENGRAM_STORAGE_DRIVER", "inmemory")).To(Succeed())

		cfg, err := resolveWith(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("inmemory"))
	})

	It("honors the --config override directory", func() {
		otherDir := filepath.Join(tmpDir, "elsewhere")
		writeConfig(otherDir, "[storage]\ndriver = \"inmemory\"\n")

		cfg, err := resolveWith([]string{"--config", otherDir})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("inmemory"))
	})
})

var _ = Describe("NewRuntime", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	offlineConfig := func() *config.Config {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"
		cfg.Embedding.Provider = "hash"
		return cfg
	}

	It("assembles a working engine from an inmemory config", func() {
		rt, err := wiring.NewRuntime(ctx, offlineConfig(), zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		result, err := rt.Engine.AddDocument(ctx, "the sky is blue")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(engine.StatusStored))
		Expect(result.TotalDocuments).To(Equal(1))

		docs, err := rt.Engine.RetrieveTopK(ctx, "sky", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))

		Expect(rt.Close()).To(Succeed())
	})

	It("exposes the store for host-level access", func() {
		rt, err := wiring.NewRuntime(ctx, offlineConfig(), zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = rt.Close() }()

		_, err = rt.Engine.AddDocument(ctx, "grass is green")
		Expect(err).NotTo(HaveOccurred())

		count, err := rt.Store.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("carries the config budgets into the engine defaults", func() {
		cfg := offlineConfig()
		cfg.Memory.MaxLongTermTokens = 5

		rt, err := wiring.NewRuntime(ctx, cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = rt.Close() }()

		// The engine export reflects an empty buffer and the seeded store,
		// proving the assembled stack shares one config.
		_, err = rt.Engine.AddDocument(ctx, "a fact")
		Expect(err).NotTo(HaveOccurred())

		export, err := rt.Engine.ExportMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(export.ShortTerm).To(BeEmpty())
		Expect(export.LongTermDocCount).To(Equal(1))
	})
})
