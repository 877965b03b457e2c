package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iurnickita/aquamanager/internal/config"
	"github.com/iurnickita/aquamanager/internal/logger"
	"github.com/iurnickita/aquamanager/internal/service"
	"github.com/iurnickita/aquamanager/internal/store"
)

// app - общие зависимости подкоманд
type app struct {
	cfgFile string
	cfg     config.Config
	zaplog  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "aquamanager",
		Short:         "Water jar delivery ledger",
		Long:          "Aqua Manager keeps customers, deliveries, payments, bookings and reminders of a water jar business.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			a.zaplog, err = logger.NewZapLog(cfg.Logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zaplog != nil {
				_ = a.zaplog.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml)")

	root.AddCommand(
		a.newServeCmd(),
		a.newDeliverCmd(),
		a.newPayCmd(),
		a.newBalancesCmd(),
		a.newReportCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newTokenCmd(),
	)
	return root
}

// open поднимает хранилище и сервис. Закрывать хранилище должен вызывающий.
func (a *app) open(ctx context.Context) (service.Service, store.Store, error) {
	st, err := store.NewStore(a.cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return service.NewService(ctx, a.cfg.Service, st, a.zaplog), st, nil
}
