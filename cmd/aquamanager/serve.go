package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurnickita/aquamanager/internal/auth"
	"github.com/iurnickita/aquamanager/internal/handler"
	"github.com/iurnickita/aquamanager/internal/scheduler"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, st, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return handler.Serve(ctx, a.cfg.Handler, auth.NewAuth(a.cfg.Auth), svc, a.zaplog)
			})
			if interval := a.cfg.Service.DigestInterval; interval > 0 {
				digest := scheduler.NewDigest(svc, a.zaplog, nil)
				g.Go(func() error {
					return digest.Start(ctx, interval)
				})
			}

			err = g.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				a.zaplog.Error("server stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
