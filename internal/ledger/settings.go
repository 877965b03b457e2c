package ledger

import (
	"errors"
	"strings"

	"golang.org/x/text/currency"

	"github.com/iurnickita/aquamanager/internal/model"
)

var ErrInvalidCurrency = errors.New("currency must be an ISO 4217 code")

type SettingsUpdate struct {
	MerchantUpiID     *string
	MerchantName      *string
	Currency          *string
	AutoSmsPreference *bool
}

// UpdateSettings заменяет только переданные поля
func (e *Engine) UpdateSettings(s *model.State, upd SettingsUpdate) (model.BusinessSettings, error) {
	next := s.Settings
	if upd.MerchantUpiID != nil {
		next.MerchantUpiID = strings.TrimSpace(*upd.MerchantUpiID)
	}
	if upd.MerchantName != nil {
		next.MerchantName = *upd.MerchantName
	}
	if upd.Currency != nil {
		unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(*upd.Currency)))
		if err != nil {
			return s.Settings, ErrInvalidCurrency
		}
		next.Currency = unit.String()
	}
	if upd.AutoSmsPreference != nil {
		next.AutoSmsPreference = *upd.AutoSmsPreference
	}
	s.Settings = next

	return next, nil
}
