// Package engramcmder
package engramcmder

import (
	"github.com/spf13/cobra"

	addcmder "github.com/engramco/engram/cmd/engram/add"
	askcmder "github.com/engramco/engram/cmd/engram/ask"
	configcmder "github.com/engramco/engram/cmd/engram/config"
	dbpathcmder "github.com/engramco/engram/cmd/engram/dbpath"
	initcmder "github.com/engramco/engram/cmd/engram/init"
	resetcmder "github.com/engramco/engram/cmd/engram/reset"
	searchcmder "github.com/engramco/engram/cmd/engram/search"
	servecmder "github.com/engramco/engram/cmd/engram/serve"
	statuscmder "github.com/engramco/engram/cmd/engram/status"
	versioncmder "github.com/engramco/engram/cmd/engram/version"
)

const engramLongDesc string = `Engram is a dual-memory engine for LLM agents.

It keeps a short-term conversation buffer and a long-term vector store,
retrieves the most relevant knowledge for a question, and assembles
budget-bounded prompts for a generation provider.

Run the server using:
  engram serve         Run the REST API server (MCP mounted under /mcp)

Work with memory using:
  engram add           Store knowledge in the long-term store
  engram search        Retrieve ranked matches for a query
  engram ask           Answer a question from memory
  engram status        Show store and configuration state
  engram reset         Clear memory`

const engramShortDesc string = "Engram - dual-memory engine for LLM agents"

func NewEngramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engram",
		Short: engramShortDesc,
		Long:  engramLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Directory containing engram.toml (default: .engram or ~/.engram)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(dbpathcmder.NewDBPathCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
