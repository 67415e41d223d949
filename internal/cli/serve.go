package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apresai/personaswap/internal/httpapi"
	"github.com/apresai/personaswap/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the websocket stream and MCP endpoint",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long:  "Run an MCP server on stdin/stdout for local assistants. Logs go to stderr.",
	RunE:  runMCP,
}

var flagPort int

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides PORT and config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagPort > 0 {
		cfg.Server.Port = flagPort
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	mcp := mcpserver.New(a.svc, Version, a.log)
	srv := httpapi.New(httpapi.Options{
		Service: a.svc,
		Config:  cfg,
		Logger:  a.log,
		MCP:     mcp.HTTPHandler(),
	})
	return srv.ListenAndServe(ctx)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("PersonaSwap MCP server starting on stdio", "version", Version)
	return mcpserver.New(a.svc, Version, a.log).ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
