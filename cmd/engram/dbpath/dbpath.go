// Package dbpathcmder provides the dbpath command for printing the resolved
// SQLite database path.
package dbpathcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/dotdir"
)

type dbpathCommander struct {
	dbPath string
}

const dbpathLongDesc string = `Print the resolved path of the SQLite database.

Resolution order:
 1. --db flag
 2. ENGRAM_SQLITE or ENGRAM_DB environment variables
 3. An existing engram.db or engram.sqlite in the usual locations
 4. engram.db inside the resolved .engram/ directory

Useful for scripting backups or inspecting the store with the sqlite3 CLI:
  sqlite3 "$(engram dbpath)" 'SELECT COUNT(*) FROM documents;'

Examples:
  engram dbpath
  engram dbpath --db ./scratch.db`

const dbpathShortDesc string = "Print the resolved SQLite database path"

func NewDBPathCmd() *cobra.Command {
	cmder := &dbpathCommander{}

	cmd := &cobra.Command{
		Use:   "dbpath",
		Short: dbpathShortDesc,
		Long:  dbpathLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)

	return cmd
}

func (c *dbpathCommander) run(_ *cobra.Command) error {
	path, err := dotdir.ResolveDBPath(c.dbPath)
	if err != nil {
		return err
	}

	fmt.Println(path)

	return nil
}
