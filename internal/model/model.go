package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Суммы в документе хранятся числами, как в исходном формате резервной копии
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout - формат календарной даты (date, scheduledDate)
const DateLayout = "2006-01-02"

// FormatDate возвращает календарную метку дня для момента t
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Клиенты

type Customer struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Phone                  string          `json:"phone"`
	Address                string          `json:"address"`
	PricePerJar            decimal.Decimal `json:"pricePerJar"`
	Balance                decimal.Decimal `json:"balance"`
	Active                 bool            `json:"active"`
	AverageConsumptionDays *float64        `json:"averageConsumptionDays,omitempty"`
}

// Доставки

type Delivery struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Date       string `json:"date"`
	Quantity   int    `json:"quantity"`
	Timestamp  int64  `json:"timestamp"`
	Note       string `json:"note,omitempty"`
}

// Журнал операций

type TransactionType string

const (
	TransactionBill    TransactionType = "BILL"
	TransactionPayment TransactionType = "PAYMENT"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentUPI     PaymentMethod = "UPI"
	PaymentPending PaymentMethod = "PENDING"
)

// Valid сообщает, известен ли способ оплаты
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentPending:
		return true
	}
	return false
}

type Transaction struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`
	Method     PaymentMethod   `json:"method,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// Заявки

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingFulfilled BookingStatus = "FULFILLED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customerId"`
	Date       string        `json:"date"`
	Quantity   int           `json:"quantity"`
	Status     BookingStatus `json:"status"`
	Note       string        `json:"note,omitempty"`
	Reference  string        `json:"reference,omitempty"`
}

// Напоминания

type ReminderType string

const (
	ReminderUpcomingDelivery ReminderType = "UPCOMING_DELIVERY"
	ReminderPaymentDue       ReminderType = "PAYMENT_DUE"
)

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "PENDING"
	ReminderSent    ReminderStatus = "SENT"
)

type ScheduledReminder struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customerId"`
	ScheduledDate string         `json:"scheduledDate"`
	Type          ReminderType   `json:"type"`
	Status        ReminderStatus `json:"status"`
	Note          string         `json:"note,omitempty"`
}

// Настройки

type BusinessSettings struct {
	MerchantUpiID     string `json:"merchantUpiId"`
	MerchantName      string `json:"merchantName"`
	Currency          string `json:"currency"`
	AutoSmsPreference bool   `json:"autoSmsPreference"`
}

// State - весь документ состояния. Владелец один (service), сохраняется целиком.
type State struct {
	Customers    []Customer          `json:"customers"`
	Deliveries   []Delivery          `json:"deliveries"`
	Transactions []Transaction       `json:"transactions"`
	Reminders    []ScheduledReminder `json:"reminders"`
	Bookings     []Booking           `json:"bookings"`
	Settings     BusinessSettings    `json:"settings"`
}

// Clone возвращает независимую копию состояния
func (s *State) Clone() *State {
	out := &State{
		Customers:    make([]Customer, len(s.Customers)),
		Deliveries:   append([]Delivery{}, s.Deliveries...),
		Transactions: append([]Transaction{}, s.Transactions...),
		Reminders:    append([]ScheduledReminder{}, s.Reminders...),
		Bookings:     append([]Booking{}, s.Bookings...),
		Settings:     s.Settings,
	}
	for i, c := range s.Customers {
		if c.AverageConsumptionDays != nil {
			days := *c.AverageConsumptionDays
			c.AverageConsumptionDays = &days
		}
		out.Customers[i] = c
	}
	return out
}

// FindCustomer возвращает индекс клиента или -1
func (s *State) FindCustomer(id string) int {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return i
		}
	}
	return -1
}

// FindBooking возвращает индекс заявки или -1
func (s *State) FindBooking(id string) int {
	for i := range s.Bookings {
		if s.Bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// FindReminder возвращает индекс напоминания или -1
func (s *State) FindReminder(id string) int {
	for i := range s.Reminders {
		if s.Reminders[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTransaction возвращает индекс операции или -1
func (s *State) FindTransaction(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}
