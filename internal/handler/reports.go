package handler

import (
	"io"
	"net/http"

	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/model"
	"github.com/iurnickita/aquamanager/internal/report"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
	"github.com/iurnickita/aquamanager/internal/upi"
)

// Резервная копия больше этого размера не принимается
const maxBackupSize = 32 << 20

type UpdateSettingsJSONRequest struct {
	MerchantUpiID     *string `json:"merchantUpiId" validate:"omitempty,min=3,max=100,contains=@"`
	MerchantName      *string `json:"merchantName" validate:"omitempty,max=100"`
	Currency          *string `json:"currency" validate:"omitempty,len=3"`
	AutoSmsPreference *bool   `json:"autoSmsPreference"`
}

func (h *handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Settings())
}

func (h *handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), ledger.SettingsUpdate{
		MerchantUpiID:     req.MerchantUpiID,
		MerchantName:      req.MerchantName,
		Currency:          req.Currency,
		AutoSmsPreference: req.AutoSmsPreference,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *handler) SettingsUpiLink(w http.ResponseWriter, r *http.Request) {
	link, err := upi.PreviewLink(h.service.Settings())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, UpiLinkJSONResponse{Link: link})
}

type DashboardJSONResponse struct {
	report.Dashboard
	Predictions []assistant.Prediction `json:"predictions"`
}

// Dashboard - сводка дня. Прогноз запрашивается, только если доставки уже были.
func (h *handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := h.service.State()
	resp := DashboardJSONResponse{
		Dashboard:   report.BuildDashboard(state, h.now()),
		Predictions: []assistant.Prediction{},
	}
	if len(state.Deliveries) > 0 {
		resp.Predictions = h.service.PredictRefills(r.Context(), 2)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) Analytics(w http.ResponseWriter, r *http.Request) {
	tf, err := report.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, report.BuildAnalytics(h.service.State(), tf, h.now()))
}

func (h *handler) CustomersCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
	if err := report.WriteCustomersCSV(w, h.service.State().Customers); err != nil {
		h.zaplog.Sugar().Errorw("customers csv failed", "error", err)
	}
}

func (h *handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export()
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="aqua_backup_`+model.FormatDate(h.now())+`.json"`)
	w.Write(data)
}

func (h *handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBackupSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = h.service.Import(r.Context(), data); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
