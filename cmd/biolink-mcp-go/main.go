package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/longevity-genie/biolink-mcp-go/internal/buildinfo"
	"github.com/longevity-genie/biolink-mcp-go/internal/monarch"
	"github.com/longevity-genie/biolink-mcp-go/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "biolink-mcp",
		Short:         "MCP server exposing the Monarch Biolink knowledge graph as tools",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.AddCommand(newRunCmd(), newStdioCmd(), newSSECmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		host      string
		port      int
		transport string
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the server on the configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, api, err := loadConfigs(cmd)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Host = host
			}
			if port > 0 {
				cfg.Port = port
			}
			if transport != "" {
				cfg.Transport = transport
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			return serve(cmd.Context(), cfg, api)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default "+server.DefaultHost+")")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default 3001)")
	cmd.Flags().StringVar(&transport, "transport", "", "transport: sse or stdio (default sse)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "scratch directory advertised to tools")
	return cmd
}

func newStdioCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdio (for desktop clients)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			cfg, api, err := loadConfigs(cmd)
			if err != nil {
				return err
			}
			cfg.Transport = "stdio"
			return serve(cmd.Context(), cfg, api)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newSSECmd() *cobra.Command {
	var (
		host      string
		port      int
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "sse",
		Short: "Serve MCP over SSE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, api, err := loadConfigs(cmd)
			if err != nil {
				return err
			}
			cfg.Transport = "sse"
			if host != "" {
				cfg.Host = host
			}
			if port > 0 {
				cfg.Port = port
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			return serve(cmd.Context(), cfg, api)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default "+server.DefaultHost+")")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default 3001)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "scratch directory advertised to tools")
	return cmd
}

// loadConfigs builds the server and API configuration from the environment
// plus the optional --config YAML overlay.
func loadConfigs(cmd *cobra.Command) (*server.Config, *monarch.Config, error) {
	cfg := server.NewConfig()
	api := monarch.NewConfig()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		fc, err := server.LoadFileConfig(path)
		if err != nil {
			return nil, nil, err
		}
		if err := fc.Apply(cfg, api); err != nil {
			return nil, nil, err
		}
	}
	return cfg, api, nil
}

// serve wires the configuration into an API client and MCP server, runs the
// selected transport until ctx is cancelled, then closes the client with a
// bounded wait.
func serve(ctx context.Context, cfg *server.Config, api *monarch.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", cfg.OutputDir, err)
	}

	client := monarch.NewClient(api)
	srv := server.NewMCPServer(client, cfg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting biolink MCP server",
		"version", buildinfo.Version,
		"transport", cfg.Transport,
		"base_url", api.BaseURL,
		"output_dir", cfg.OutputDir)

	switch cfg.Transport {
	case "stdio":
		return srv.Run(ctx)
	case "sse":
		return srv.RunSSE(ctx, cfg.Addr(), cfg.Endpoint)
	default:
		return fmt.Errorf("unknown transport %q (want sse or stdio)", cfg.Transport)
	}
}
