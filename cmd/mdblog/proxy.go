package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/mdblog/sqlite"
	"github.com/eringen/mdblog/worker"
)

var (
	proxyAddr  string
	proxyCache string
)

var proxyCmd = &cobra.Command{
	Use:   "proxy <origin>",
	Short: "Run the caching router in front of a remote blog",
	Long: `proxy serves a remote blog through the caching router, so a site built
elsewhere can be read offline. Cache entries persist in a SQLite file when
--cache is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		origin := args[0]

		var storage worker.Storage = worker.NewMemoryStorage()
		if proxyCache != "" {
			s, err := sqlite.Open(proxyCache)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer s.Close()
			storage = s
		}

		logger := log.New("proxy")
		logger.SetLevel(cfg.Level())
		wc := cfg.Worker
		w, err := worker.New(wc.Version, origin, storage,
			worker.WithLogger(logger),
			worker.WithPrecache(wc.Precache...),
			worker.WithFonts(wc.Fonts...),
			worker.WithNetworkTimeout(wc.NetworkTimeout),
			worker.WithSweep(wc.SweepInterval, wc.SweepMaxAge),
			worker.WithCleanMaxAge(wc.CleanMaxAge),
		)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := w.Start(ctx)
		if err != nil {
			return fmt.Errorf("starting worker: %w", err)
		}
		for u, err := range report.Failed {
			logger.Warnf("not precached %s: %v", u, err)
		}
		go func() { _ = w.Run(ctx) }()

		rp, err := w.Proxy(origin)
		if err != nil {
			return err
		}
		srv := &http.Server{Addr: proxyAddr, Handler: rp, ReadHeaderTimeout: 10 * time.Second}
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		logger.Infof("proxying %s on %s", origin, proxyAddr)

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	proxyCmd.Flags().StringVar(&proxyAddr, "addr", ":3001", "listen address")
	proxyCmd.Flags().StringVar(&proxyCache, "cache", "", "SQLite cache file (in memory when empty)")
	rootCmd.AddCommand(proxyCmd)
}
