package assistant

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Assistant - внешний ИИ-помощник. Каждый вызов - один запрос без повторов.
type Assistant interface {
	PredictRefills(ctx context.Context, req RefillRequest) ([]Prediction, error)
	DraftSMS(ctx context.Context, req SMSRequest) (string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
	AnalyzeHealth(ctx context.Context, req HealthRequest) (HealthReport, error)
}

var (
	ErrInvalidRequest = errors.New("invalid assistant request")
	ErrInvalidReply   = errors.New("invalid assistant reply")
	ErrEmptyReply     = errors.New("empty assistant reply")
	ErrStatus         = errors.New("unexpected assistant status")
)

// Прогноз дозаказа

type RefillCustomer struct {
	ID         string   `json:"id" validate:"required"`
	Name       string   `json:"name"`
	Deliveries []string `json:"deliveries" validate:"dive,datetime=2006-01-02"`
}

type RefillRequest struct {
	Customers []RefillCustomer `json:"customers" validate:"dive"`
}

type Prediction struct {
	CustomerID string `json:"customerId" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

// SMS

type NotificationKind string

const (
	KindDailyDeliveryBill        NotificationKind = "DAILY_DELIVERY_BILL"
	KindPaymentConfirmation      NotificationKind = "PAYMENT_CONFIRMATION"
	KindPaymentReminder          NotificationKind = "PAYMENT_REMINDER"
	KindMonthlyBillSummary       NotificationKind = "MONTHLY_BILL_SUMMARY"
	KindRefillPrompt             NotificationKind = "REFILL_PROMPT"
	KindBookingConfirmed         NotificationKind = "BOOKING_CONFIRMED"
	KindUpcomingDeliveryReminder NotificationKind = "UPCOMING_DELIVERY_REMINDER"
)

// Notification - данные одного вида сообщения
type Notification interface {
	Kind() NotificationKind
}

type DeliveryBill struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"min=1"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
	Date     string          `json:"date" validate:"datetime=2006-01-02"`
	Note     string          `json:"note,omitempty"`
}

type PaymentConfirmation struct {
	Name    string          `json:"name" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
	Method  string          `json:"method" validate:"oneof=CASH UPI PENDING"`
	Date    string          `json:"date" validate:"datetime=2006-01-02"`
}

type PaymentReminder struct {
	Name    string          `json:"name" validate:"required"`
	Balance decimal.Decimal `json:"balance"`
}

type MonthlyBillSummary struct {
	Name    string          `json:"name" validate:"required"`
	Balance decimal.Decimal `json:"balance"`
	Month   string          `json:"month" validate:"required"`
}

type RefillPrompt struct {
	Name string `json:"name" validate:"required"`
}

type BookingConfirmed struct {
	Name      string `json:"name" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
	Reference string `json:"reference,omitempty" validate:"omitempty,numeric"`
}

type UpcomingDeliveryReminder struct {
	Name          string `json:"name" validate:"required"`
	ScheduledDate string `json:"scheduledDate" validate:"datetime=2006-01-02"`
	Note          string `json:"note,omitempty"`
}

func (DeliveryBill) Kind() NotificationKind             { return KindDailyDeliveryBill }
func (PaymentConfirmation) Kind() NotificationKind      { return KindPaymentConfirmation }
func (PaymentReminder) Kind() NotificationKind          { return KindPaymentReminder }
func (MonthlyBillSummary) Kind() NotificationKind       { return KindMonthlyBillSummary }
func (RefillPrompt) Kind() NotificationKind             { return KindRefillPrompt }
func (BookingConfirmed) Kind() NotificationKind         { return KindBookingConfirmed }
func (UpcomingDeliveryReminder) Kind() NotificationKind { return KindUpcomingDeliveryReminder }

type SMSRequest struct {
	Notification Notification
}

// Диалог

type ChatMode string

const (
	ModeMerchant ChatMode = "MERCHANT"
	ModeSupport  ChatMode = "SUPPORT"
)

type Message struct {
	Role string `json:"role" validate:"oneof=user model"`
	Text string `json:"text" validate:"required"`
}

type Metrics struct {
	Customers       int             `json:"customers"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	PendingBookings int             `json:"pendingBookings"`
}

type ChatRequest struct {
	Mode     ChatMode  `json:"mode" validate:"oneof=MERCHANT SUPPORT"`
	Messages []Message `json:"messages" validate:"min=1,dive"`
	Metrics  Metrics   `json:"metrics"`
}

// Оценка состояния бизнеса

type HealthRequest struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	DeliveryCount int             `json:"deliveryCount" validate:"min=0"`
}

type HealthReport struct {
	Summary       string `json:"summary" validate:"required"`
	ActionableTip string `json:"actionableTip" validate:"required"`
}

// validate проверяет запрос перед отправкой
func validate(v *validator.Validate, req any) error {
	if sms, ok := req.(SMSRequest); ok {
		if sms.Notification == nil {
			return ErrInvalidRequest
		}
		req = sms.Notification
	}
	if err := v.Struct(req); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}
