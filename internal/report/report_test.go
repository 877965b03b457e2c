package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/aquamanager/internal/model"
)

var now = time.Date(2024, 2, 3, 18, 0, 0, 0, time.UTC)

func reportState() *model.State {
	return &model.State{
		Customers: []model.Customer{
			{ID: "c1", Name: "Green Valley Gym", Phone: "9876543210", Address: "12 Main St", PricePerJar: decimal.NewFromInt(40), Balance: decimal.NewFromInt(70), Active: true},
			{ID: "c3", Name: "Tech Solutions Office", Phone: "9876543212", Address: "Indiranagar, Block 4", PricePerJar: decimal.NewFromInt(50), Balance: decimal.RequireFromString("-12.5"), Active: true},
		},
		Deliveries: []model.Delivery{
			{ID: "d1", CustomerID: "c1", Date: "2024-02-03", Quantity: 3},
			{ID: "d2", CustomerID: "c3", Date: "2024-02-03", Quantity: 2},
			{ID: "d3", CustomerID: "c3", Date: "2024-01-20", Quantity: 5},
		},
		Transactions: []model.Transaction{
			{ID: "bill_d3", CustomerID: "c3", Date: "2024-01-20", Amount: decimal.NewFromInt(250), Type: model.TransactionBill},
			{ID: "pay_1", CustomerID: "c3", Date: "2024-01-31", Amount: decimal.NewFromInt(100), Type: model.TransactionPayment},
			{ID: "pay_2", CustomerID: "c3", Date: "2024-02-01", Amount: decimal.RequireFromString("62.5"), Type: model.TransactionPayment},
			{ID: "bill_d1", CustomerID: "c1", Date: "2024-02-03", Amount: decimal.NewFromInt(120), Type: model.TransactionBill},
			{ID: "pay_3", CustomerID: "c1", Date: "2024-02-03", Amount: decimal.NewFromInt(50), Type: model.TransactionPayment},
		},
		Bookings: []model.Booking{
			{ID: "b1", Status: model.BookingPending},
			{ID: "b2", Status: model.BookingFulfilled},
		},
	}
}

func TestDashboard(t *testing.T) {
	dash := BuildDashboard(reportState(), now)

	require.Equal(t, 5, dash.TodayJars)
	require.Equal(t, "57.5", dash.Outstanding.String())
	// январские оплаты не входят
	require.Equal(t, "112.5", dash.MonthCollection.String())
	require.Equal(t, 1, dash.PendingBookings)
}

func TestAnalyticsWeekly(t *testing.T) {
	a := BuildAnalytics(reportState(), Weekly, now)

	require.Len(t, a.Buckets, 7)
	require.Equal(t, "2024-01-28", a.Buckets[0].Date)
	require.Equal(t, "01-28", a.Buckets[0].Label)
	require.Equal(t, "2024-02-03", a.Buckets[6].Date)

	require.Equal(t, "100", a.Buckets[3].Collection.String()) // 2024-01-31
	require.Equal(t, "62.5", a.Buckets[4].Collection.String())
	require.Equal(t, "120", a.Buckets[6].Sales.String())
	require.Equal(t, "50", a.Buckets[6].Collection.String())
	require.Equal(t, "0", a.Buckets[5].Sales.String())

	// итоги за все время
	require.Equal(t, "370", a.Totals.Sales.String())
	require.Equal(t, "212.5", a.Totals.Collection.String())
	require.Equal(t, "57.5", a.Totals.Outstanding.String())
}

func TestAnalyticsTimeframes(t *testing.T) {
	require.Len(t, BuildAnalytics(reportState(), Daily, now).Buckets, 1)
	require.Len(t, BuildAnalytics(reportState(), Monthly, now).Buckets, 30)

	all := BuildAnalytics(reportState(), All, now)
	require.Len(t, all.Buckets, 365)
	require.Equal(t, "2023-02-04", all.Buckets[0].Date)

	monthly := BuildAnalytics(reportState(), Monthly, now)
	var sales decimal.Decimal
	for _, b := range monthly.Buckets {
		sales = sales.Add(b.Sales)
	}
	require.Equal(t, "370", sales.String())
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("monthly")
	require.NoError(t, err)
	require.Equal(t, Monthly, tf)

	tf, err = ParseTimeframe("")
	require.NoError(t, err)
	require.Equal(t, Weekly, tf)

	_, err = ParseTimeframe("YEARLY")
	require.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestCustomersCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCustomersCSV(&buf, reportState().Customers))

	want := "id,name,phone,address,pricePerJar,balance,active\n" +
		"c1,Green Valley Gym,9876543210,12 Main St,40.00,70.00,true\n" +
		"c3,Tech Solutions Office,9876543212,\"Indiranagar, Block 4\",50.00,-12.50,true\n"
	require.Equal(t, want, buf.String())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "INR 1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "INR"))
	assert.Equal(t, "INR 0.00", FormatMoney(decimal.Zero, "INR"))
	assert.Equal(t, "USD 1,000,000.00", FormatMoney(decimal.NewFromInt(1000000), "USD"))
}
