package handler

import (
	"net/http"
	"strconv"

	"github.com/iurnickita/aquamanager/internal/service"
	"github.com/iurnickita/aquamanager/internal/service/assistant"
)

type ChatJSONRequest struct {
	Mode     string              `json:"mode" validate:"required,oneof=MERCHANT SUPPORT"`
	Messages []assistant.Message `json:"messages" validate:"required,min=1,dive"`
}

type TextJSONResponse struct {
	Text string `json:"text"`
}

func (h *handler) Predictions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	h.writeJSON(w, http.StatusOK, h.service.PredictRefills(r.Context(), limit))
}

func (h *handler) DraftSMS(w http.ResponseWriter, r *http.Request) {
	var req service.SMSDraftRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	draft, err := h.service.DraftSMS(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatJSONRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	text := h.service.Chat(r.Context(), assistant.ChatMode(req.Mode), req.Messages)
	h.writeJSON(w, http.StatusOK, TextJSONResponse{Text: text})
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.AnalyzeHealth(r.Context()))
}
