package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
	"github.com/iurnickita/aquamanager/internal/service/config"
	"github.com/iurnickita/aquamanager/internal/store"
)

type Service interface {
	// Чтение. Возвращаются копии.
	State() *model.State
	Settings() model.BusinessSettings

	// Клиенты
	AddCustomer(ctx context.Context, in ledger.NewCustomer) (model.Customer, error)
	EditCustomer(ctx context.Context, id string, upd ledger.CustomerUpdate) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) bool

	// Журнал
	RecordDelivery(ctx context.Context, customerID string, quantity int, date string, note string) (ledger.Receipt, error)
	CollectPayment(ctx context.Context, customerID string, amount decimal.Decimal, method model.PaymentMethod) (ledger.Receipt, error)

	// Заявки
	AddBooking(ctx context.Context, customerID string, quantity int, note string) (*model.Booking, error)
	FulfillBooking(ctx context.Context, bookingID string) (ledger.Receipt, error)
	CancelBooking(ctx context.Context, bookingID string) bool

	// Напоминания и настройки
	ScheduleReminder(ctx context.Context, customerID string, date string, kind model.ReminderType, note string) (*model.ScheduledReminder, error)
	MarkReminderSent(ctx context.Context, id string) bool
	DeleteReminder(ctx context.Context, id string) bool
	UpdateSettings(ctx context.Context, upd ledger.SettingsUpdate) (model.BusinessSettings, error)

	// Резервная копия
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error

	// ИИ-помощник
	PredictRefills(ctx context.Context, limit int) []assistant.Prediction
	DraftSMS(ctx context.Context, req SMSDraftRequest) (SMSDraft, error)
	Chat(ctx context.Context, mode assistant.ChatMode, messages []assistant.Message) string
	AnalyzeHealth(ctx context.Context) assistant.HealthReport
}

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrBadBackup  = errors.New("backup is not a valid state document")
)

type service struct {
	cfg       config.Config
	store     store.Store
	engine    *ledger.Engine
	assistant assistant.Assistant
	zaplog    *zap.Logger
	now       func() time.Time

	// единственный владелец документа состояния; операции применяются по одной
	mu    sync.Mutex
	state *model.State
}

type Option func(*service)

func WithAssistant(a assistant.Assistant) Option {
	return func(s *service) { s.assistant = a }
}

func WithEngine(e *ledger.Engine) Option {
	return func(s *service) { s.engine = e }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(ctx context.Context, cfg config.Config, st store.Store, zaplog *zap.Logger, opts ...Option) Service {
	service := &service{
		cfg:    cfg,
		store:  st,
		zaplog: zaplog,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.engine == nil {
		service.engine = ledger.NewEngine(ledger.WithClock(service.now))
	}
	if service.assistant == nil {
		service.assistant = assistant.NewGeminiClient(cfg.AssistantAddr, cfg.AssistantKey, cfg.AssistantModel, cfg.AssistantTimeout)
	}

	state, err := st.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		zaplog.Info("state document not found, starting with defaults")
		state = store.DefaultState(service.now())
	default:
		zaplog.Error("state load failed, starting with defaults", zap.Error(err))
		state = store.DefaultState(service.now())
	}
	service.state = state

	return service
}

// save сохраняет документ. Ошибка только логируется: состояние в памяти остается верным.
// Изменение уже применено, поэтому отмена запроса не должна прерывать запись.
// Вызывается под service.mu.
func (service *service) save(ctx context.Context) {
	if err := service.store.Save(context.WithoutCancel(ctx), service.state); err != nil {
		service.zaplog.Error("state save failed", zap.Error(err))
	}
}

// update применяет операцию под блокировкой и сохраняет документ, если она что-то изменила
func (service *service) update(ctx context.Context, op func(s *model.State) (bool, error)) error {
	service.mu.Lock()
	defer service.mu.Unlock()

	changed, err := op(service.state)
	if err != nil {
		return translate(err)
	}
	if changed {
		service.save(ctx)
	}
	return nil
}

// translate переводит ошибки проверки журнала в ошибки сервиса
func translate(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidMethod),
		errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrNameRequired):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}

func (service *service) State() *model.State {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.state.Clone()
}

func (service *service) Settings() model.BusinessSettings {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.state.Settings
}

func (service *service) AddCustomer(ctx context.Context, in ledger.NewCustomer) (customer model.Customer, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		customer, err = service.engine.AddCustomer(s, in)
		return err == nil, err
	})
	return customer, err
}

func (service *service) EditCustomer(ctx context.Context, id string, upd ledger.CustomerUpdate) (customer *model.Customer, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		customer, err = service.engine.EditCustomer(s, id, upd)
		return customer != nil, err
	})
	return customer, err
}

func (service *service) DeleteCustomer(ctx context.Context, id string) (deleted bool) {
	service.update(ctx, func(s *model.State) (bool, error) {
		deleted = service.engine.DeleteCustomer(s, id)
		return deleted, nil
	})
	return deleted
}

func (service *service) RecordDelivery(ctx context.Context, customerID string, quantity int, date string, note string) (receipt ledger.Receipt, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		receipt, err = service.engine.RecordDelivery(s, customerID, quantity, date, note)
		return !receipt.Empty(), err
	})
	if err == nil && !receipt.Empty() {
		service.zaplog.Info("delivery recorded",
			zap.String("customer", customerID),
			zap.Int("quantity", quantity),
			zap.String("amount", receipt.Transaction.Amount.String()),
		)
	}
	return receipt, err
}

func (service *service) CollectPayment(ctx context.Context, customerID string, amount decimal.Decimal, method model.PaymentMethod) (receipt ledger.Receipt, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		receipt, err = service.engine.CollectPayment(s, customerID, amount, method)
		return !receipt.Empty(), err
	})
	if err == nil && !receipt.Empty() {
		service.zaplog.Info("payment collected",
			zap.String("customer", customerID),
			zap.String("amount", amount.String()),
			zap.String("method", string(method)),
		)
	}
	return receipt, err
}

func (service *service) AddBooking(ctx context.Context, customerID string, quantity int, note string) (booking *model.Booking, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		booking, err = service.engine.AddBooking(s, customerID, quantity, note)
		return booking != nil, err
	})
	return booking, err
}

func (service *service) FulfillBooking(ctx context.Context, bookingID string) (receipt ledger.Receipt, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		receipt, err = service.engine.FulfillBooking(s, bookingID)
		return !receipt.Empty(), err
	})
	return receipt, err
}

func (service *service) CancelBooking(ctx context.Context, bookingID string) (cancelled bool) {
	service.update(ctx, func(s *model.State) (bool, error) {
		cancelled = service.engine.CancelBooking(s, bookingID)
		return cancelled, nil
	})
	return cancelled
}

func (service *service) ScheduleReminder(ctx context.Context, customerID string, date string, kind model.ReminderType, note string) (reminder *model.ScheduledReminder, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		reminder, err = service.engine.ScheduleReminder(s, customerID, date, kind, note)
		return reminder != nil, err
	})
	return reminder, err
}

func (service *service) MarkReminderSent(ctx context.Context, id string) (marked bool) {
	service.update(ctx, func(s *model.State) (bool, error) {
		marked = service.engine.MarkReminderSent(s, id)
		return marked, nil
	})
	return marked
}

func (service *service) DeleteReminder(ctx context.Context, id string) (deleted bool) {
	service.update(ctx, func(s *model.State) (bool, error) {
		deleted = service.engine.DeleteReminder(s, id)
		return deleted, nil
	})
	return deleted
}

func (service *service) UpdateSettings(ctx context.Context, upd ledger.SettingsUpdate) (settings model.BusinessSettings, err error) {
	err = service.update(ctx, func(s *model.State) (bool, error) {
		settings, err = service.engine.UpdateSettings(s, upd)
		return err == nil, err
	})
	return settings, err
}

func (service *service) Export() ([]byte, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	return store.Encode(service.state.Clone())
}

// Import заменяет документ целиком. Проверяется только формат, содержимое не сверяется с журналом.
func (service *service) Import(ctx context.Context, data []byte) error {
	state, err := store.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadBackup, err)
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	service.state = state
	service.save(ctx)
	service.zaplog.Info("state imported",
		zap.Int("customers", len(state.Customers)),
		zap.Int("transactions", len(state.Transactions)),
	)
	return nil
}
