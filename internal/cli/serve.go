package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/happy-sdk/space-dns/internal/dns"
	"github.com/happy-sdk/space-dns/pkg/config"
)

func newServeCommand() *cobra.Command {
	var (
		configFile string
		listen     string
		upstream   string
		cacheSize  int
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the DNS daemon",
		Long: `Run the caching DNS daemon in the foreground.

The daemon keeps running until stopped with Ctrl+C or SIGTERM.
Configuration is read from .space-dns.yaml in the working directory and
~/.config/space-dns/config.yaml; flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.NewLoader(Workdir)
			if err != nil {
				return fmt.Errorf("failed to create config loader: %w", err)
			}

			var cfg *config.Config
			if configFile != "" {
				cfg, err = loader.LoadFromFile(configFile)
			} else {
				cfg, err = loader.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// Flags override file configuration
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("upstream") {
				cfg.Upstream = upstream
			}
			if cmd.Flags().Changed("cache-size") {
				cfg.Cache.Capacity = cacheSize
			}
			if debug {
				cfg.Log.Debug = true
			}

			logger := dns.NewSimpleLogger(cfg.Log.Debug)

			srv, err := dns.NewServer(dns.Config{
				Addr:          cfg.Listen,
				Upstream:      cfg.Upstream,
				CacheSize:     cfg.Cache.Capacity,
				SweepInterval: time.Duration(cfg.Cache.SweepInterval),
				Logger:        logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create DNS server: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("failed to start DNS daemon: %w", err)
			}

			fmt.Printf("✅ space-dns listening on %s (upstream %s)\n", srv.Addr(), cfg.Upstream)
			fmt.Println("🔄 DNS daemon is running... (Press Ctrl+C to stop)")
			fmt.Println()
			fmt.Println("💡 Test DNS resolution:")
			fmt.Printf("   space-dns query example.com --server %s\n", srv.Addr())

			<-ctx.Done()

			fmt.Println()
			fmt.Printf("🛑 Stopping space-dns (%d records cached)...\n", srv.CacheLen())
			if err := srv.Stop(); err != nil {
				return fmt.Errorf("failed to stop DNS daemon: %w", err)
			}
			fmt.Println("✅ DNS daemon stopped")

			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to a config file")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:5353", "UDP address to listen on")
	cmd.Flags().StringVar(&upstream, "upstream", "1.1.1.1:53", "upstream resolver address")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 4096, "maximum cached records (negative disables caching)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}
