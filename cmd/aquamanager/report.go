package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iurnickita/aquamanager/internal/report"
)

func (a *app) newReportCmd() *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard and sales analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := report.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}

			svc, st, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			now := time.Now()
			state := svc.State()
			currency := state.Settings.Currency
			dash := report.BuildDashboard(state, now)
			analytics := report.BuildAnalytics(state, tf, now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today:             %d jar(s)\n", dash.TodayJars)
			fmt.Fprintf(out, "outstanding:       %s\n", report.FormatMoney(dash.Outstanding, currency))
			fmt.Fprintf(out, "collected (month): %s\n", report.FormatMoney(dash.MonthCollection, currency))
			fmt.Fprintf(out, "pending bookings:  %d\n\n", dash.PendingBookings)

			fmt.Fprintf(out, "%s\n", analytics.Timeframe)
			for _, b := range analytics.Buckets {
				if b.Sales.IsZero() && b.Collection.IsZero() {
					continue
				}
				fmt.Fprintf(out, "  %s  sales %s  collected %s\n", b.Date,
					report.FormatMoney(b.Sales, currency), report.FormatMoney(b.Collection, currency))
			}
			fmt.Fprintf(out, "total sales %s, collected %s\n",
				report.FormatMoney(analytics.Totals.Sales, currency), report.FormatMoney(analytics.Totals.Collection, currency))
			return nil
		},
	}
	cmd.Flags().StringVar(&timeframe, "timeframe", string(report.Weekly), "DAILY, WEEKLY, MONTHLY or ALL")
	return cmd
}
