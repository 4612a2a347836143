package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/api"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/sqlite"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fivex HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	cmd.Flags().String("listen", ":5000", "listen address")
	cmd.Flags().Int("workers", 4, "concurrent tissue queries per study request")
	viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	return cmd
}

func runServe() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	// Load the gene tables once; every request shares them read-only.
	tables, err := a.annotations().Tables()
	if err != nil {
		return err
	}
	a.logger.Info("annotation tables loaded",
		zap.Int("symbols", len(tables.Symbols)), zap.Int("tss", len(tables.TSS)))

	deps := api.Deps{
		Querier:  a.querier(annotation.NewStatic(tables)),
		BestHits: make(map[locate.DataType]api.BestHitFinder),
		Workers:  a.cfg.Workers,
		Logger:   a.logger,
	}

	for _, dt := range []locate.DataType{locate.GeneExpression, locate.Txrevise} {
		b, err := a.bestHits(dt)
		if err != nil {
			a.logger.Warn("best hit lookup disabled", zap.String("datatype", string(dt)), zap.Error(err))
			continue
		}
		defer b.Close()
		deps.BestHits[dt] = b
	}

	if r, err := sqlite.OpenRSIDs(a.resolver.RSIDDatabase()); err != nil {
		a.logger.Warn("rsid lookup disabled", zap.Error(err))
	} else {
		defer r.Close()
		deps.RSIDs = r
	}

	if g, err := a.genes(); err != nil {
		a.logger.Warn("gene lookup disabled", zap.Error(err))
	} else {
		deps.Genes = g
	}

	srv := api.NewServer(deps)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start(a.cfg.Listen)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case s := <-sig:
		a.logger.Info("shutting down", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
