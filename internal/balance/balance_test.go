package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/aquamanager/internal/model"
)

func testState() *model.State {
	// журнал хранится новыми записями вперед
	return &model.State{
		Customers: []model.Customer{
			{ID: "c1", Balance: decimal.NewFromInt(70)},
			{ID: "c2", Balance: decimal.NewFromInt(10)},
		},
		Transactions: []model.Transaction{
			{ID: "bill_4", CustomerID: "c1", Date: "2024-01-01", Amount: decimal.NewFromInt(0), Type: model.TransactionBill, Timestamp: 200},
			{ID: "bill_3", CustomerID: "c2", Date: "2024-01-02", Amount: decimal.NewFromInt(35), Type: model.TransactionBill, Timestamp: 200},
			{ID: "pay_2", CustomerID: "c1", Date: "2024-01-01", Amount: decimal.NewFromInt(50), Type: model.TransactionPayment, Method: model.PaymentCash, Timestamp: 200},
			{ID: "bill_1", CustomerID: "c1", Date: "2024-01-03", Amount: decimal.NewFromInt(120), Type: model.TransactionBill, Timestamp: 100},
		},
	}
}

func TestDerive(t *testing.T) {
	s := testState()
	require.Equal(t, "70", Derive(s.Transactions, "c1").String())
	require.Equal(t, "35", Derive(s.Transactions, "c2").String())
	require.Equal(t, "0", Derive(s.Transactions, "c3").String())
}

func TestReconcile(t *testing.T) {
	s := testState()

	mismatches := Reconcile(s)
	require.Len(t, mismatches, 1)
	require.Equal(t, "c2", mismatches[0].CustomerID)
	require.Equal(t, "10", mismatches[0].Cached.String())
	require.Equal(t, "35", mismatches[0].Derived.String())

	s.Customers[1].Balance = decimal.NewFromInt(35)
	require.Empty(t, Reconcile(s))
}

func TestHistoryOrder(t *testing.T) {
	s := testState()

	history := History(s, "c1")
	require.Len(t, history, 3)
	// по timestamp, а не по календарной дате; при равенстве - позже добавленная первой
	require.Equal(t, "bill_4", history[0].ID)
	require.Equal(t, "pay_2", history[1].ID)
	require.Equal(t, "bill_1", history[2].ID)

	payments := Payments(s, "c1")
	require.Len(t, payments, 1)
	require.Equal(t, "pay_2", payments[0].ID)

	require.Empty(t, History(s, "c9"))
}

func TestDeliveriesOrder(t *testing.T) {
	s := &model.State{Deliveries: []model.Delivery{
		{ID: "d3", CustomerID: "c1", Timestamp: 30},
		{ID: "d2", CustomerID: "c2", Timestamp: 30},
		{ID: "d1", CustomerID: "c1", Timestamp: 10},
	}}

	all := Deliveries(s, "")
	require.Equal(t, []string{"d3", "d2", "d1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	own := Deliveries(s, "c1")
	require.Len(t, own, 2)
	require.Equal(t, "d3", own[0].ID)
}

func TestTotals(t *testing.T) {
	s := testState()
	require.Equal(t, "80", Outstanding(s.Customers).String())
	require.Equal(t, "155", Total(s.Transactions, model.TransactionBill).String())
	require.Equal(t, "50", Total(s.Transactions, model.TransactionPayment).String())
}

func TestHistoryKeepsImportedOrder(t *testing.T) {
	// копия из браузерной версии: записи одной секунды, новые первыми
	s := &model.State{Transactions: []model.Transaction{
		{ID: "pay_b", CustomerID: "c1", Amount: decimal.NewFromInt(20), Type: model.TransactionPayment, Timestamp: 500},
		{ID: "bill_b", CustomerID: "c1", Amount: decimal.NewFromInt(40), Type: model.TransactionBill, Timestamp: 500},
		{ID: "bill_a", CustomerID: "c1", Amount: decimal.NewFromInt(40), Type: model.TransactionBill, Timestamp: 400},
	}}

	history := History(s, "c1")
	require.Equal(t, []string{"pay_b", "bill_b", "bill_a"}, []string{history[0].ID, history[1].ID, history[2].ID})
}
