package main

import (
	"github.com/spf13/cobra"

	"storefront-theme/internal/config"
	"storefront-theme/pkg/logger"
)

type rootFlags struct {
	cfg      *config.Config
	themeDir string
	verbose  bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &rootFlags{cfg: cfg}

	cmd := &cobra.Command{
		Use:           "themectl",
		Short:         "themectl boots storefront pages and replays theme editor sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.verbose {
				return logger.SetLevel("debug")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.themeDir, "theme", cfg.ThemeDir, "Theme directory containing theme.json and templates/")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newReplayCmd(flags))
	cmd.AddCommand(newResolveCmd(flags))
	cmd.AddCommand(newMoneyCmd(flags))
	cmd.AddCommand(newTemplatesCmd(flags))

	return cmd
}
