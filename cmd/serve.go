package cmd

import (
	"fmt"
	"log/slog"

	"github.com/rogersnm/kanban/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Listen
		if cmd.Flags().Changed("listen") {
			addr, _ = cmd.Flags().GetString("listen")
		}
		// A board with no buckets opens on the sample data.
		if len(brd.State().Buckets) == 0 {
			brd.InitializeWithSampleData()
			slog.Info("initialized board with sample data")
		}

		srv := web.NewServer(brd, slog.Default())
		fmt.Printf("Serving board on %s\n", addr)
		return srv.Run(addr)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on (default from config, :5001)")
	rootCmd.AddCommand(serveCmd)
}
