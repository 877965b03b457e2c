package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/service"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
)

type ScheduleReminderJSONRequest struct {
	CustomerID    string `json:"customerId" validate:"required"`
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	Type          string `json:"type" validate:"required,oneof=UPCOMING_DELIVERY PAYMENT_DUE"`
	Note          string `json:"note" validate:"max=200"`
}

// ListReminders - неотправленные по дате; ?all=true - все в порядке создания
func (h *handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	state := h.service.State()
	if r.URL.Query().Get("all") == "true" {
		h.writeJSON(w, http.StatusOK, state.Reminders)
		return
	}
	reminders := ledger.PendingReminders(state)
	if reminders == nil {
		reminders = []model.ScheduledReminder{}
	}
	h.writeJSON(w, http.StatusOK, reminders)
}

func (h *handler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req ScheduleReminderJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	reminder, err := h.service.ScheduleReminder(r.Context(), req.CustomerID, req.ScheduledDate, model.ReminderType(req.Type), req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if reminder == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusCreated, reminder)
}

func (h *handler) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	if !h.service.MarkReminderSent(r.Context(), chi.URLParam(r, "id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	if !h.service.DeleteReminder(r.Context(), chi.URLParam(r, "id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ReminderSMS готовит текст напоминания о доставке и отмечает его отправленным
func (h *handler) ReminderSMS(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.DraftSMS(r.Context(), service.SMSDraftRequest{
		Kind:       assistant.KindUpcomingDeliveryReminder,
		ReminderID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}
