package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rdt_go/config"
	"rdt_go/pkg/storage"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the bot_users table if it does not exist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DB.Driver == config.DriverMemory {
			log.Printf("[DB INFO] Хранилище в памяти, миграция не нужна")
			return nil
		}
		db, err := storage.Open(cmd.Context(), cfg.DB.Driver, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(cmd.Context())
	},
}
