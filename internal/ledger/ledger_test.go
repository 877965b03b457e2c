package ledger

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/aquamanager/internal/model"
)

func newTestEngine() *Engine {
	seq := 0
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	return NewEngine(
		WithClock(func() time.Time { return now }),
		WithIDs(func() string {
			seq++
			return "id" + strconv.Itoa(seq)
		}),
	)
}

func newTestState() *model.State {
	return &model.State{
		Customers: []model.Customer{
			{ID: "c1", Name: "Green Valley Gym", PricePerJar: decimal.NewFromInt(40), Balance: decimal.Zero, Active: true},
			{ID: "c2", Name: "Sunrise Apartments", PricePerJar: decimal.NewFromInt(35), Balance: decimal.Zero, Active: true},
		},
		Settings: model.BusinessSettings{Currency: "INR"},
	}
}

// сумма BILL минус сумма PAYMENT по каждому клиенту
func requireLedgerBalanced(t *testing.T, s *model.State) {
	t.Helper()
	for _, c := range s.Customers {
		sum := decimal.Zero
		for _, tx := range s.Transactions {
			if tx.CustomerID != c.ID {
				continue
			}
			switch tx.Type {
			case model.TransactionBill:
				sum = sum.Add(tx.Amount)
			case model.TransactionPayment:
				sum = sum.Sub(tx.Amount)
			}
		}
		require.True(t, c.Balance.Equal(sum), "customer %s: balance %s, ledger %s", c.ID, c.Balance, sum)
	}
}

func TestLedgerScenario(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	// доставка 3 бутылей по 40
	receipt, err := e.RecordDelivery(s, "c1", 3, "2024-01-01", "")
	require.NoError(t, err)
	require.NotNil(t, receipt.Delivery)
	require.NotNil(t, receipt.Transaction)
	require.Equal(t, "120", s.Customers[0].Balance.String())
	require.Len(t, s.Deliveries, 1)
	require.Equal(t, 3, s.Deliveries[0].Quantity)
	require.Len(t, s.Transactions, 1)
	require.Equal(t, model.TransactionBill, s.Transactions[0].Type)
	require.Equal(t, "120", s.Transactions[0].Amount.String())
	require.Equal(t, "2024-01-01", s.Transactions[0].Date)
	require.Equal(t, "bill_"+s.Deliveries[0].ID, s.Transactions[0].ID)
	requireLedgerBalanced(t, s)

	// оплата 50 наличными
	receipt, err = e.CollectPayment(s, "c1", decimal.NewFromInt(50), model.PaymentCash)
	require.NoError(t, err)
	require.Nil(t, receipt.Delivery)
	require.Equal(t, "70", s.Customers[0].Balance.String())
	require.Len(t, s.Transactions, 2)
	payment := s.Transactions[0]
	require.Equal(t, model.TransactionPayment, payment.Type)
	require.Equal(t, "50", payment.Amount.String())
	require.Equal(t, model.PaymentCash, payment.Method)
	require.Equal(t, "2024-01-05", payment.Date)
	requireLedgerBalanced(t, s)
}

func TestRecordDeliveryNotes(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	_, err := e.RecordDelivery(s, "c2", 2, "2024-01-02", "gate 3")
	require.NoError(t, err)
	require.Equal(t, "Delivery: 2 jars (gate 3)", s.Transactions[0].Notes)
	require.Equal(t, "gate 3", s.Deliveries[0].Note)

	_, err = e.RecordDelivery(s, "c2", 1, "2024-01-03", "")
	require.NoError(t, err)
	require.Equal(t, "Delivery: 1 jars", s.Transactions[0].Notes)
	require.Equal(t, "Delivery: 2 jars (gate 3)", s.Transactions[1].Notes)
	require.Equal(t, "105", s.Customers[1].Balance.String())
}

func TestRecordDeliveryRejected(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name     string
		customer string
		quantity int
		date     string
		err      error
	}{
		{name: "zero quantity", customer: "c1", quantity: 0, date: "2024-01-01", err: ErrInvalidQuantity},
		{name: "negative quantity", customer: "c1", quantity: -2, date: "2024-01-01", err: ErrInvalidQuantity},
		{name: "bad date", customer: "c1", quantity: 1, date: "01/01/2024", err: ErrInvalidDate},
		{name: "unknown customer", customer: "nope", quantity: 1, date: "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()

			receipt, err := e.RecordDelivery(s, tt.customer, tt.quantity, tt.date, "")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			require.True(t, receipt.Empty())
			require.Empty(t, s.Deliveries)
			require.Empty(t, s.Transactions)
			require.Equal(t, "0", s.Customers[0].Balance.String())
		})
	}
}

func TestCollectPayment(t *testing.T) {
	e := newTestEngine()

	t.Run("overpayment allowed", func(t *testing.T) {
		s := newTestState()
		_, err := e.CollectPayment(s, "c2", decimal.RequireFromString("12.50"), model.PaymentUPI)
		require.NoError(t, err)
		require.Equal(t, "-12.5", s.Customers[1].Balance.String())
		requireLedgerBalanced(t, s)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		s := newTestState()
		_, err := e.CollectPayment(s, "c1", decimal.Zero, model.PaymentCash)
		require.ErrorIs(t, err, ErrInvalidAmount)
		_, err = e.CollectPayment(s, "c1", decimal.NewFromInt(-5), model.PaymentCash)
		require.ErrorIs(t, err, ErrInvalidAmount)
		require.Empty(t, s.Transactions)
	})

	t.Run("unknown method", func(t *testing.T) {
		s := newTestState()
		_, err := e.CollectPayment(s, "c1", decimal.NewFromInt(5), model.PaymentMethod("CHEQUE"))
		require.ErrorIs(t, err, ErrInvalidMethod)
		require.Empty(t, s.Transactions)
	})

	t.Run("unknown customer", func(t *testing.T) {
		s := newTestState()
		receipt, err := e.CollectPayment(s, "nope", decimal.NewFromInt(5), model.PaymentCash)
		require.NoError(t, err)
		require.True(t, receipt.Empty())
		require.Empty(t, s.Transactions)
	})
}

func TestFulfillBooking(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	booking, err := e.AddBooking(s, "c1", 2, "evening")
	require.NoError(t, err)
	require.NotNil(t, booking)
	require.Equal(t, model.BookingPending, booking.Status)
	require.Equal(t, "2024-01-05", booking.Date)
	require.True(t, ValidReference(booking.Reference))

	receipt, err := e.FulfillBooking(s, booking.ID)
	require.NoError(t, err)
	require.False(t, receipt.Empty())
	require.Equal(t, model.BookingFulfilled, s.Bookings[0].Status)
	require.Len(t, s.Deliveries, 1)
	require.Len(t, s.Transactions, 1)
	// дата доставки - текущая, а не дата заявки
	require.Equal(t, "2024-01-05", s.Deliveries[0].Date)
	require.Equal(t, "Booking #"+booking.ID+": evening", s.Deliveries[0].Note)
	require.Equal(t, "80", s.Customers[0].Balance.String())

	// повторное исполнение не выставляет второй счет
	receipt, err = e.FulfillBooking(s, booking.ID)
	require.NoError(t, err)
	require.True(t, receipt.Empty())
	require.Len(t, s.Transactions, 1)
	require.Equal(t, "80", s.Customers[0].Balance.String())
	requireLedgerBalanced(t, s)

	// неизвестная заявка
	receipt, err = e.FulfillBooking(s, "missing")
	require.NoError(t, err)
	require.True(t, receipt.Empty())
}

func TestCancelBooking(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	booking, err := e.AddBooking(s, "c2", 1, "")
	require.NoError(t, err)

	require.True(t, e.CancelBooking(s, booking.ID))
	require.Equal(t, model.BookingCancelled, s.Bookings[0].Status)
	require.Equal(t, "0", s.Customers[1].Balance.String())
	require.Empty(t, s.Transactions)

	// отмененную заявку нельзя ни отменить повторно, ни исполнить
	require.False(t, e.CancelBooking(s, booking.ID))
	receipt, err := e.FulfillBooking(s, booking.ID)
	require.NoError(t, err)
	require.True(t, receipt.Empty())
	require.Equal(t, model.BookingCancelled, s.Bookings[0].Status)

	require.False(t, e.CancelBooking(s, "missing"))
}

func TestAddBookingRejected(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	_, err := e.AddBooking(s, "c1", 0, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	booking, err := e.AddBooking(s, "nope", 1, "")
	require.NoError(t, err)
	require.Nil(t, booking)
	require.Empty(t, s.Bookings)
}

func TestBookingReferencesUnique(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		booking, err := e.AddBooking(s, "c1", 1, "")
		require.NoError(t, err)
		require.False(t, seen[booking.Reference], "duplicate reference %s", booking.Reference)
		require.True(t, ValidReference(booking.Reference))
		seen[booking.Reference] = true
	}
}

func TestValidReference(t *testing.T) {
	assert.True(t, ValidReference("79927398713"))
	assert.False(t, ValidReference("79927398710"))
	assert.False(t, ValidReference("abc"))
	assert.False(t, ValidReference(""))
}

func TestMixedSequenceKeepsInvariant(t *testing.T) {
	e := newTestEngine()
	s := newTestState()

	b1, err := e.AddBooking(s, "c1", 4, "")
	require.NoError(t, err)
	b2, err := e.AddBooking(s, "c2", 2, "")
	require.NoError(t, err)

	_, err = e.RecordDelivery(s, "c2", 5, "2024-01-02", "")
	require.NoError(t, err)
	_, err = e.FulfillBooking(s, b1.ID)
	require.NoError(t, err)
	require.True(t, e.CancelBooking(s, b2.ID))
	_, err = e.CollectPayment(s, "c1", decimal.NewFromInt(200), model.PaymentUPI)
	require.NoError(t, err)
	_, err = e.CollectPayment(s, "c2", decimal.NewFromInt(100), model.PaymentCash)
	require.NoError(t, err)

	requireLedgerBalanced(t, s)
	require.Equal(t, "-40", s.Customers[0].Balance.String())
	// последние записи стоят первыми
	require.Equal(t, model.TransactionPayment, s.Transactions[0].Type)
	require.Equal(t, "c2", s.Transactions[0].CustomerID)
	require.Equal(t, b2.ID, s.Bookings[0].ID)
	require.Equal(t, b1.ID, s.Bookings[1].ID)
	require.Equal(t, "c1", s.Deliveries[0].CustomerID)
	require.Equal(t, "75", s.Customers[1].Balance.String())
}
