package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/report"
)

var (
	errUnknownCustomer = errors.New("customer not found")
	errMismatch        = errors.New("balances do not match the ledger")
)

func (a *app) newDeliverCmd() *cobra.Command {
	var date, note string

	cmd := &cobra.Command{
		Use:   "deliver <customer-id> <quantity>",
		Short: "Record a delivery and bill the customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			if date == "" {
				date = model.FormatDate(time.Now())
			}

			svc, st, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			receipt, err := svc.RecordDelivery(cmd.Context(), args[0], quantity, date, note)
			if err != nil {
				return err
			}
			if receipt.Empty() {
				return errUnknownCustomer
			}

			currency := svc.Settings().Currency
			fmt.Fprintf(cmd.OutOrStdout(), "delivered %d jar(s) on %s, billed %s\n",
				receipt.Delivery.Quantity, receipt.Delivery.Date, report.FormatMoney(receipt.Transaction.Amount, currency))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "delivery date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "delivery note")
	return cmd
}

func (a *app) newPayCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "pay <customer-id> <amount>",
		Short: "Collect a payment from a customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}

			svc, st, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			receipt, err := svc.CollectPayment(cmd.Context(), args[0], amount, model.PaymentMethod(strings.ToUpper(method)))
			if err != nil {
				return err
			}
			if receipt.Empty() {
				return errUnknownCustomer
			}

			currency := svc.Settings().Currency
			fmt.Fprintf(cmd.OutOrStdout(), "received %s (%s)\n",
				report.FormatMoney(receipt.Transaction.Amount, currency), receipt.Transaction.Method)
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", string(model.PaymentCash), "CASH, UPI or PENDING")
	return cmd
}

func (a *app) newBalancesCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "List customer balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, st, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			state := svc.State()
			currency := state.Settings.Currency

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBALANCE")
			for _, c := range state.Customers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, report.FormatMoney(c.Balance, currency))
			}
			fmt.Fprintf(w, "\tTOTAL\t%s\n", report.FormatMoney(balance.Outstanding(state.Customers), currency))
			if err = w.Flush(); err != nil {
				return err
			}

			if !verify {
				return nil
			}
			mismatches := balance.Reconcile(state)
			for _, m := range mismatches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: balance %s, ledger %s\n", m.CustomerID, m.Cached, m.Derived)
			}
			if len(mismatches) > 0 {
				return errMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "balances match the ledger")
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check balances against the transaction ledger")
	return cmd
}
