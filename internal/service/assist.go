package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
)

// Ответы при недоступности помощника
const (
	SMSFailed     = "Failed to generate SMS. Please try manual messaging."
	SMSEmpty      = "Error generating message."
	ChatFailed    = "The AI Agent is busy. Try again shortly."
	ChatEmpty     = "I'm sorry, I couldn't process that."
	HealthSummary = "Analysis unavailable."
	HealthTip     = "Keep tracking your bookings."
)

// SMSDraftRequest - что нужно сообщить. Нужные поля зависят от вида:
// DeliveryID и TransactionID необязательны (берется последняя запись клиента),
// BookingID обязателен для BOOKING_CONFIRMED, ReminderID - для UPCOMING_DELIVERY_REMINDER.
type SMSDraftRequest struct {
	Kind          assistant.NotificationKind `json:"type" validate:"required"`
	CustomerID    string                     `json:"customerId"`
	DeliveryID    string                     `json:"deliveryId,omitempty"`
	TransactionID string                     `json:"transactionId,omitempty"`
	BookingID     string                     `json:"bookingId,omitempty"`
	ReminderID    string                     `json:"reminderId,omitempty"`
	Month         string                     `json:"month,omitempty"`
}

type SMSDraft struct {
	Text  string `json:"text"`
	Phone string `json:"phone"`
}

func (service *service) PredictRefills(ctx context.Context, limit int) []assistant.Prediction {
	service.mu.Lock()
	req := assistant.RefillRequest{Customers: make([]assistant.RefillCustomer, 0, len(service.state.Customers))}
	known := make(map[string]bool, len(service.state.Customers))
	for _, c := range service.state.Customers {
		dates := make([]string, 0)
		for _, d := range service.state.Deliveries {
			if d.CustomerID == c.ID {
				dates = append(dates, d.Date)
			}
		}
		req.Customers = append(req.Customers, assistant.RefillCustomer{ID: c.ID, Name: c.Name, Deliveries: dates})
		known[c.ID] = true
	}
	service.mu.Unlock()

	predictions, err := service.assistant.PredictRefills(ctx, req)
	if err != nil {
		service.zaplog.Warn("refill prediction failed", zap.Error(err))
		return []assistant.Prediction{}
	}

	out := make([]assistant.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if !known[p.CustomerID] {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (service *service) DraftSMS(ctx context.Context, req SMSDraftRequest) (SMSDraft, error) {
	service.mu.Lock()
	notification, phone, err := service.notification(service.state, req)
	service.mu.Unlock()
	if err != nil {
		return SMSDraft{}, err
	}

	text, err := service.assistant.DraftSMS(ctx, assistant.SMSRequest{Notification: notification})
	switch {
	case err == nil:
	case errors.Is(err, assistant.ErrEmptyReply):
		text = SMSEmpty
	default:
		service.zaplog.Warn("sms draft failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		text = SMSFailed
	}

	// напоминание считается отправленным, как только по нему подготовлен текст
	if req.Kind == assistant.KindUpcomingDeliveryReminder {
		service.MarkReminderSent(ctx, req.ReminderID)
	}

	return SMSDraft{Text: text, Phone: phone}, nil
}

// notification собирает данные сообщения из состояния. Вызывается под service.mu.
func (service *service) notification(s *model.State, req SMSDraftRequest) (assistant.Notification, string, error) {
	customerID := req.CustomerID
	if req.Kind == assistant.KindUpcomingDeliveryReminder {
		idx := s.FindReminder(req.ReminderID)
		if idx < 0 {
			return nil, "", ErrNotFound
		}
		customerID = s.Reminders[idx].CustomerID
	}

	idx := s.FindCustomer(customerID)
	if idx < 0 {
		return nil, "", ErrNotFound
	}
	c := s.Customers[idx]

	switch req.Kind {
	case assistant.KindDailyDeliveryBill:
		for _, d := range balance.Deliveries(s, c.ID) {
			if req.DeliveryID != "" && d.ID != req.DeliveryID {
				continue
			}
			// сумма берется из парного BILL: цена клиента с тех пор могла измениться
			quantity := decimal.NewFromInt(int64(d.Quantity))
			total := c.PricePerJar.Mul(quantity)
			rate := c.PricePerJar
			if tidx := s.FindTransaction("bill_" + d.ID); tidx >= 0 {
				total = s.Transactions[tidx].Amount
				if d.Quantity > 0 {
					rate = total.Div(quantity)
				}
			}
			return assistant.DeliveryBill{
				Name:     c.Name,
				Quantity: d.Quantity,
				Rate:     rate,
				Total:    total,
				Balance:  c.Balance,
				Date:     d.Date,
				Note:     d.Note,
			}, c.Phone, nil
		}
		return nil, "", ErrNotFound

	case assistant.KindPaymentConfirmation:
		for _, tx := range balance.Payments(s, c.ID) {
			if req.TransactionID != "" && tx.ID != req.TransactionID {
				continue
			}
			return assistant.PaymentConfirmation{
				Name:    c.Name,
				Amount:  tx.Amount,
				Balance: c.Balance,
				Method:  string(tx.Method),
				Date:    tx.Date,
			}, c.Phone, nil
		}
		return nil, "", ErrNotFound

	case assistant.KindPaymentReminder:
		return assistant.PaymentReminder{Name: c.Name, Balance: c.Balance}, c.Phone, nil

	case assistant.KindMonthlyBillSummary:
		month := req.Month
		if month == "" {
			month = service.now().Month().String()
		}
		return assistant.MonthlyBillSummary{Name: c.Name, Balance: c.Balance, Month: month}, c.Phone, nil

	case assistant.KindRefillPrompt:
		return assistant.RefillPrompt{Name: c.Name}, c.Phone, nil

	case assistant.KindBookingConfirmed:
		bidx := s.FindBooking(req.BookingID)
		if bidx < 0 || s.Bookings[bidx].CustomerID != c.ID {
			return nil, "", ErrNotFound
		}
		b := s.Bookings[bidx]
		return assistant.BookingConfirmed{Name: c.Name, Quantity: b.Quantity, Reference: b.Reference}, c.Phone, nil

	case assistant.KindUpcomingDeliveryReminder:
		r := s.Reminders[s.FindReminder(req.ReminderID)]
		return assistant.UpcomingDeliveryReminder{Name: c.Name, ScheduledDate: r.ScheduledDate, Note: r.Note}, c.Phone, nil
	}

	return nil, "", ErrValidation
}

func (service *service) Chat(ctx context.Context, mode assistant.ChatMode, messages []assistant.Message) string {
	service.mu.Lock()
	metrics := assistant.Metrics{
		Customers:       len(service.state.Customers),
		Outstanding:     balance.Outstanding(service.state.Customers),
		PendingBookings: pendingBookings(service.state),
	}
	service.mu.Unlock()

	text, err := service.assistant.Chat(ctx, assistant.ChatRequest{Mode: mode, Messages: messages, Metrics: metrics})
	switch {
	case err == nil:
		return text
	case errors.Is(err, assistant.ErrEmptyReply):
		return ChatEmpty
	default:
		service.zaplog.Warn("assistant chat failed", zap.String("mode", string(mode)), zap.Error(err))
		return ChatFailed
	}
}

func (service *service) AnalyzeHealth(ctx context.Context) assistant.HealthReport {
	service.mu.Lock()
	req := assistant.HealthRequest{
		Revenue:       balance.Total(service.state.Transactions, model.TransactionPayment),
		Outstanding:   balance.Outstanding(service.state.Customers),
		DeliveryCount: len(service.state.Deliveries),
	}
	service.mu.Unlock()

	report, err := service.assistant.AnalyzeHealth(ctx, req)
	if err != nil {
		service.zaplog.Warn("health analysis failed", zap.Error(err))
		return assistant.HealthReport{Summary: HealthSummary, ActionableTip: HealthTip}
	}
	return report
}

func pendingBookings(s *model.State) int {
	n := 0
	for _, b := range s.Bookings {
		if b.Status == model.BookingPending {
			n++
		}
	}
	return n
}
