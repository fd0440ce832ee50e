package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"file_search_go/history"
	"file_search_go/web"
)

var (
	webDBs  []string
	webPort int
	webBind string
)

var webCmd = &cobra.Command{
	Use:     "web",
	Aliases: []string{"w"},
	Short:   "Serve search and indexing over HTTP",
	Long: `Starts an HTTP server with a browser UI and a JSON API for searching,
exporting and indexing. Store files created in the watched directories are
picked up without a restart.`,
	Example: `  # Serve every store under ~/stores on port 8080
  fsearch web --db ~/stores --port 8080`,
	Args: cobra.NoArgs,
	RunE: runWeb,
}

func init() {
	f := webCmd.Flags()
	f.StringSliceVarP(&webDBs, "db", "d", []string{"."}, "store files or directories holding them")
	f.IntVarP(&webPort, "port", "p", 0, "listen port (default from config)")
	f.StringVar(&webBind, "bind", "", "listen address (default from config)")
	rootCmd.AddCommand(webCmd)
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg := web.Config{
		Bind:   orDefault(webBind, appConfig.Web.Bind),
		Port:   orDefaultInt(webPort, appConfig.Web.Port),
		App:    appConfig,
		Stores: web.NewStoreSet(webDBs, appConfig.Store.Suffix),
	}
	if appConfig.History.Enabled {
		cfg.History = history.New(appConfig.History.Path, appConfig.History.MaxEntries)
	}

	srv := web.New(cfg)
	fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("Serving on http://"+srv.Addr()))
	fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("%d stores found", len(cfg.Stores.Paths()))))
	return srv.Start(cmd.Context())
}
