package main

import (
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/architect/internal/server"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket API",
	Long: `Serve the orchestration engine over HTTP.

Routes:
  GET  /health
  POST /api/orchestrate   {specification, files, tests}
  POST /api/query         {query, files}
  POST /api/terminal      {command}
  GET  /api/terminal/ws   streams attempts of a self-healing run

Terminal commands run in --dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		engine, err := newEngine(cfg, configCommands(cfg), configRetrieval(cfg))
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(addr, engine,
			server.WithLogger(logger.Named("server")),
			server.WithWorkDir(serveDir))
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8787", "Listen address")
	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", ".", "Working directory for terminal commands")
}
