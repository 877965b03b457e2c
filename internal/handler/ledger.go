package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/service"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
)

type RecordDeliveryJSONRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note       string `json:"note" validate:"max=200"`
}

type RecordDeliveryJSONResponse struct {
	ledger.Receipt
	SMS *service.SMSDraft `json:"sms,omitempty"`
}

func (h *handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, balance.Deliveries(h.service.State(), r.URL.Query().Get("customerId")))
}

// RecordDelivery фиксирует доставку. При включенном autoSmsPreference сразу готовит SMS со счетом.
func (h *handler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	var req RecordDeliveryJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Date == "" {
		req.Date = model.FormatDate(h.now())
	}

	receipt, err := h.service.RecordDelivery(r.Context(), req.CustomerID, req.Quantity, req.Date, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if receipt.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := RecordDeliveryJSONResponse{Receipt: receipt}
	if h.service.Settings().AutoSmsPreference {
		draft, err := h.service.DraftSMS(r.Context(), service.SMSDraftRequest{
			Kind:       assistant.KindDailyDeliveryBill,
			CustomerID: req.CustomerID,
			DeliveryID: receipt.Delivery.ID,
		})
		if err == nil {
			resp.SMS = &draft
		}
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

type CollectPaymentJSONRequest struct {
	CustomerID string          `json:"customerId" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"required,oneof=CASH UPI PENDING"`
}

func (h *handler) CollectPayment(w http.ResponseWriter, r *http.Request) {
	var req CollectPaymentJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	receipt, err := h.service.CollectPayment(r.Context(), req.CustomerID, req.Amount, model.PaymentMethod(req.Method))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if receipt.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusCreated, receipt)
}

type AddBookingJSONRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
	Note       string `json:"note" validate:"max=200"`
}

// ListBookings - заявки, ?status= отбирает по статусу
func (h *handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	status := model.BookingStatus(r.URL.Query().Get("status"))
	bookings := make([]model.Booking, 0)
	for _, b := range h.service.State().Bookings {
		if status == "" || b.Status == status {
			bookings = append(bookings, b)
		}
	}
	h.writeJSON(w, http.StatusOK, bookings)
}

func (h *handler) AddBooking(w http.ResponseWriter, r *http.Request) {
	var req AddBookingJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	booking, err := h.service.AddBooking(r.Context(), req.CustomerID, req.Quantity, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if booking == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusCreated, booking)
}

// BookingByReference ищет заявку по номеру, который клиент называет по телефону
func (h *handler) BookingByReference(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	// Проверка по алгоритму Луна
	if !ledger.ValidReference(ref) {
		http.Error(w, "booking reference is malformed", http.StatusUnprocessableEntity)
		return
	}

	for _, b := range h.service.State().Bookings {
		if b.Reference == ref {
			h.writeJSON(w, http.StatusOK, b)
			return
		}
	}
	http.Error(w, "booking not found", http.StatusNotFound)
}

func (h *handler) FulfillBooking(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.FulfillBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if receipt.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, receipt)
}

func (h *handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if !h.service.CancelBooking(r.Context(), chi.URLParam(r, "id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}
