package cmd

import (
	"errors"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// creates the event journal and market snapshot tables
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate journal tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Pool.Journal {
			return errors.New("journal disabled, set pool.journal or pass --journal")
		}

		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			return err
		}

		cmd.Println("journal tables migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
