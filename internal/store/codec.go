package store

import (
	"encoding/json"
	"fmt"

	"github.com/iurnickita/aquamanager/internal/model"
)

// document - форма на входе: settings может отсутствовать в старых копиях
type document struct {
	Customers    []model.Customer          `json:"customers"`
	Deliveries   []model.Delivery          `json:"deliveries"`
	Transactions []model.Transaction       `json:"transactions"`
	Reminders    []model.ScheduledReminder `json:"reminders"`
	Bookings     []model.Booking           `json:"bookings"`
	Settings     *model.BusinessSettings   `json:"settings"`
}

// Encode сериализует состояние в формат резервной копии
func Encode(state *model.State) ([]byte, error) {
	// дополняется копия: состояние в памяти остается как есть
	doc := *state
	return json.MarshalIndent(Backfill(&doc), "", "  ")
}

// Decode разбирает документ и дополняет отсутствующие части значениями по умолчанию
func Decode(data []byte) (*model.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	state := &model.State{
		Customers:    doc.Customers,
		Deliveries:   doc.Deliveries,
		Transactions: doc.Transactions,
		Reminders:    doc.Reminders,
		Bookings:     doc.Bookings,
		Settings:     DefaultSettings(),
	}
	if doc.Settings != nil {
		state.Settings = *doc.Settings
	}

	return Backfill(state), nil
}

// Backfill заменяет отсутствующие коллекции пустыми, пустые настройки - значениями по умолчанию
func Backfill(state *model.State) *model.State {
	if state.Customers == nil {
		state.Customers = []model.Customer{}
	}
	if state.Deliveries == nil {
		state.Deliveries = []model.Delivery{}
	}
	if state.Transactions == nil {
		state.Transactions = []model.Transaction{}
	}
	if state.Reminders == nil {
		state.Reminders = []model.ScheduledReminder{}
	}
	if state.Bookings == nil {
		state.Bookings = []model.Booking{}
	}

	def := DefaultSettings()
	if state.Settings.MerchantUpiID == "" {
		state.Settings.MerchantUpiID = def.MerchantUpiID
	}
	if state.Settings.MerchantName == "" {
		state.Settings.MerchantName = def.MerchantName
	}
	if state.Settings.Currency == "" {
		state.Settings.Currency = def.Currency
	}
	return state
}
