package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iurnickita/aquamanager/internal/auth"
	"github.com/iurnickita/aquamanager/internal/handler/config"
	"github.com/iurnickita/aquamanager/internal/logger"
	"github.com/iurnickita/aquamanager/internal/service"
)

var errBadJSON = errors.New("request body is not valid JSON")

// Serve обслуживает API до отмены ctx
func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(cfg, auth, service, zaplog)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      h.newRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		zaplog.Info("http server started", zap.String("addr", cfg.ServerAddr), zap.Bool("auth", auth.Enabled()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zaplog.Info("http server stopped")
	return nil
}

type handler struct {
	cfg      config.Config
	auth     auth.Auth
	service  service.Service
	zaplog   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

func newHandler(cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		cfg:      cfg,
		auth:     auth,
		service:  service,
		zaplog:   zaplog,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *handler) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogMdlw(h.zaplog))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.AddCustomer)
			r.Patch("/{id}", h.EditCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
			r.Get("/{id}/history", h.CustomerHistory)
			r.Get("/{id}/payments", h.CustomerPayments)
			r.Get("/{id}/upi-link", h.CustomerUpiLink)
		})

		r.Get("/deliveries", h.ListDeliveries)
		r.Post("/deliveries", h.RecordDelivery)
		r.Post("/payments", h.CollectPayment)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.AddBooking)
			r.Get("/by-reference/{ref}", h.BookingByReference)
			r.Post("/{id}/fulfill", h.FulfillBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.ListReminders)
			r.Post("/", h.ScheduleReminder)
			r.Post("/{id}/sent", h.MarkReminderSent)
			r.Post("/{id}/sms", h.ReminderSMS)
			r.Delete("/{id}", h.DeleteReminder)
		})

		r.Get("/settings", h.GetSettings)
		r.Patch("/settings", h.UpdateSettings)
		r.Get("/settings/upi-link", h.SettingsUpiLink)

		r.Get("/reports/dashboard", h.Dashboard)
		r.Get("/reports/analytics", h.Analytics)
		r.Get("/reports/customers.csv", h.CustomersCSV)

		r.Get("/backup", h.ExportBackup)
		r.Post("/backup", h.ImportBackup)

		r.Route("/assistant", func(r chi.Router) {
			if h.cfg.AssistantRate > 0 {
				r.Use(httprate.Limit(h.cfg.AssistantRate, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			}
			r.Get("/predictions", h.Predictions)
			r.Post("/sms", h.DraftSMS)
			r.Post("/chat", h.Chat)
			r.Get("/health", h.Health)
		})
	})

	return r
}

// decode читает JSON тела запроса и проверяет его теги validate
func (h *handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return h.validate.Struct(v)
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(responseJSON)
}

// writeError переводит ошибки сервиса в коды HTTP
func (h *handler) writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, errBadJSON),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrBadBackup):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.zaplog.Error("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
