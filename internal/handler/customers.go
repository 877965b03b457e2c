package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/upi"
)

type AddCustomerJSONRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Phone       string          `json:"phone" validate:"omitempty,max=20"`
	Address     string          `json:"address" validate:"max=200"`
	PricePerJar decimal.Decimal `json:"pricePerJar"`
}

type EditCustomerJSONRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Phone       *string          `json:"phone" validate:"omitempty,max=20"`
	Address     *string          `json:"address" validate:"omitempty,max=200"`
	PricePerJar *decimal.Decimal `json:"pricePerJar"`
	Active      *bool            `json:"active"`
}

func (h *handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.State().Customers)
}

func (h *handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req AddCustomerJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	customer, err := h.service.AddCustomer(r.Context(), ledger.NewCustomer{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		PricePerJar: req.PricePerJar,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, customer)
}

func (h *handler) EditCustomer(w http.ResponseWriter, r *http.Request) {
	var req EditCustomerJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	customer, err := h.service.EditCustomer(r.Context(), chi.URLParam(r, "id"), ledger.CustomerUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		PricePerJar: req.PricePerJar,
		Active:      req.Active,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	if customer == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, customer)
}

func (h *handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "id")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handler) CustomerHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, balance.History(h.service.State(), chi.URLParam(r, "id")))
}

func (h *handler) CustomerPayments(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, balance.Payments(h.service.State(), chi.URLParam(r, "id")))
}

type UpiLinkJSONResponse struct {
	Link   string          `json:"link"`
	Amount decimal.Decimal `json:"amount"`
}

// CustomerUpiLink - ссылка на оплату долга клиента или суммы из ?amount=
func (h *handler) CustomerUpiLink(w http.ResponseWriter, r *http.Request) {
	state := h.service.State()
	idx := state.FindCustomer(chi.URLParam(r, "id"))
	if idx < 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	amount := state.Customers[idx].Balance
	if s := r.URL.Query().Get("amount"); s != "" {
		parsed, err := decimal.NewFromString(s)
		if err != nil || !parsed.IsPositive() {
			http.Error(w, "amount must be a positive number", http.StatusBadRequest)
			return
		}
		amount = parsed
	}
	if !amount.IsPositive() {
		http.Error(w, "nothing to pay", http.StatusBadRequest)
		return
	}

	link, err := upi.PaymentLink(state.Settings, amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, UpiLinkJSONResponse{Link: link, Amount: amount})
}
