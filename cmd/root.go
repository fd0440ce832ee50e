// Package cmd implements the command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"file_search_go/config"
	"file_search_go/logger"
)

var (
	cfgFile string
	verbose bool

	// appConfig is loaded before any subcommand runs.
	appConfig = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "fsearch",
	Short: "Index file metadata and search it by keyword",
	Long: `fsearch records the path, name and optionally the modification time and
size of every file under a directory into a store file, then answers
substring keyword searches across one or more stores as a list or a tree.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. Interrupt and terminate signals cancel the
// running operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
