package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/theplant/luhn"

	"github.com/iurnickita/aquamanager/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidPrice    = errors.New("price per jar must not be negative")
	ErrInvalidMethod   = errors.New("unknown payment method")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidType     = errors.New("unknown reminder type")
	ErrNameRequired    = errors.New("customer name is required")
)

// Receipt - то, что операция добавила в журнал. Пустая квитанция: состояние не менялось.
type Receipt struct {
	Delivery    *model.Delivery    `json:"delivery,omitempty"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

func (r Receipt) Empty() bool {
	return r.Delivery == nil && r.Transaction == nil
}

// Engine применяет операции к состоянию. Каждая операция либо применяется целиком,
// либо не меняет состояние: проверки выполняются до первой записи.
type Engine struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs подменяет генератор идентификаторов
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: newTimeOrderedID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newTimeOrderedID - UUIDv7, порядок генерации восстанавливается по идентификатору
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RecordDelivery фиксирует доставку и парную операцию BILL на quantity × pricePerJar
func (e *Engine) RecordDelivery(s *model.State, customerID string, quantity int, date string, note string) (Receipt, error) {
	if quantity <= 0 {
		return Receipt{}, ErrInvalidQuantity
	}
	if err := checkDate(date); err != nil {
		return Receipt{}, err
	}
	idx := s.FindCustomer(customerID)
	if idx < 0 {
		return Receipt{}, nil
	}

	now := e.now()
	id := e.newID()
	cost := s.Customers[idx].PricePerJar.Mul(decimal.NewFromInt(int64(quantity)))

	delivery := model.Delivery{
		ID:         id,
		CustomerID: customerID,
		Date:       date,
		Quantity:   quantity,
		Timestamp:  now.UnixMilli(),
		Note:       note,
	}
	notes := fmt.Sprintf("Delivery: %d jars", quantity)
	if note != "" {
		notes = fmt.Sprintf("Delivery: %d jars (%s)", quantity, note)
	}
	bill := model.Transaction{
		ID:         "bill_" + id,
		CustomerID: customerID,
		Date:       date,
		Amount:     cost,
		Type:       model.TransactionBill,
		Notes:      notes,
		Timestamp:  now.UnixMilli(),
	}

	s.Customers[idx].Balance = s.Customers[idx].Balance.Add(cost)
	// новые записи - в начало списков
	s.Deliveries = append([]model.Delivery{delivery}, s.Deliveries...)
	s.Transactions = append([]model.Transaction{bill}, s.Transactions...)

	return Receipt{Delivery: &delivery, Transaction: &bill}, nil
}

// CollectPayment фиксирует оплату. Уход баланса в минус (переплата) допустим.
func (e *Engine) CollectPayment(s *model.State, customerID string, amount decimal.Decimal, method model.PaymentMethod) (Receipt, error) {
	if !amount.IsPositive() {
		return Receipt{}, ErrInvalidAmount
	}
	if !method.Valid() {
		return Receipt{}, ErrInvalidMethod
	}
	idx := s.FindCustomer(customerID)
	if idx < 0 {
		return Receipt{}, nil
	}

	now := e.now()
	payment := model.Transaction{
		ID:         "pay_" + e.newID(),
		CustomerID: customerID,
		Date:       model.FormatDate(now),
		Amount:     amount,
		Type:       model.TransactionPayment,
		Method:     method,
		Timestamp:  now.UnixMilli(),
	}

	s.Customers[idx].Balance = s.Customers[idx].Balance.Sub(amount)
	s.Transactions = append([]model.Transaction{payment}, s.Transactions...)

	return Receipt{Transaction: &payment}, nil
}

// AddBooking регистрирует заявку клиента на сегодняшнюю дату
func (e *Engine) AddBooking(s *model.State, customerID string, quantity int, note string) (*model.Booking, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if s.FindCustomer(customerID) < 0 {
		return nil, nil
	}

	now := e.now()
	booking := model.Booking{
		ID:         e.newID(),
		CustomerID: customerID,
		Date:       model.FormatDate(now),
		Quantity:   quantity,
		Status:     model.BookingPending,
		Note:       note,
		Reference:  nextReference(s, now),
	}
	s.Bookings = append([]model.Booking{booking}, s.Bookings...)

	return &booking, nil
}

// FulfillBooking превращает заявку в доставку текущей датой. Выполняется только для PENDING,
// поэтому повторный вызов не создает второй BILL.
func (e *Engine) FulfillBooking(s *model.State, bookingID string) (Receipt, error) {
	idx := s.FindBooking(bookingID)
	if idx < 0 {
		return Receipt{}, nil
	}
	booking := s.Bookings[idx]
	if booking.Status != model.BookingPending {
		return Receipt{}, nil
	}

	note := fmt.Sprintf("Booking #%s: %s", booking.ID, booking.Note)
	receipt, err := e.RecordDelivery(s, booking.CustomerID, booking.Quantity, model.FormatDate(e.now()), note)
	if err != nil || receipt.Empty() {
		return receipt, err
	}
	s.Bookings[idx].Status = model.BookingFulfilled

	return receipt, nil
}

// CancelBooking: PENDING -> CANCELLED, на журнал не влияет
func (e *Engine) CancelBooking(s *model.State, bookingID string) bool {
	idx := s.FindBooking(bookingID)
	if idx < 0 || s.Bookings[idx].Status != model.BookingPending {
		return false
	}
	s.Bookings[idx].Status = model.BookingCancelled
	return true
}

// Номер заявки: 8 цифр от времени + контрольная цифра Луна
const referenceModulo = 100_000_000

func nextReference(s *model.State, now time.Time) string {
	used := make(map[string]struct{}, len(s.Bookings))
	for _, b := range s.Bookings {
		used[b.Reference] = struct{}{}
	}
	n := int(now.UnixMilli() % referenceModulo)
	for {
		if n == 0 {
			n = 1
		}
		ref := strconv.Itoa(n*10 + luhn.CalculateLuhn(n))
		if _, ok := used[ref]; !ok {
			return ref
		}
		n = (n + 1) % referenceModulo
	}
}

// ValidReference проверяет контрольную цифру номера заявки
func ValidReference(ref string) bool {
	n, err := strconv.Atoi(ref)
	if err != nil || n <= 0 {
		return false
	}
	return luhn.Valid(n)
}

func checkDate(date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
