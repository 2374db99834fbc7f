package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rdt_go/config"
)

var (
	loader *config.Loader
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "rdt",
	Short:         "rdt drives Reddit accounts with persisted sessions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loader.Load(); err != nil {
			return err
		}
		if err := cfg.Log.SetupLogging(); err != nil {
			return err
		}
		if printable, err := cfg.Printable(); err == nil {
			log.Debugf("[CONFIG] %s", printable)
		}
		return nil
	},
}

func init() {
	loader = config.NewLoader(rootCmd.PersistentFlags())
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
