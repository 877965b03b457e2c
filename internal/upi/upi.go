package upi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/model"
)

var ErrNoMerchant = errors.New("merchant UPI id is not configured")

// PaymentLink - ссылка upi://pay на оплату amount. Адрес pa передается как есть.
func PaymentLink(settings model.BusinessSettings, amount decimal.Decimal) (string, error) {
	return link(settings, "&am="+amount.StringFixed(2))
}

// PreviewLink - ссылка без суммы, плательщик вводит ее сам
func PreviewLink(settings model.BusinessSettings) (string, error) {
	return link(settings, "")
}

func link(settings model.BusinessSettings, amount string) (string, error) {
	if settings.MerchantUpiID == "" {
		return "", ErrNoMerchant
	}
	return "upi://pay?pa=" + settings.MerchantUpiID +
		"&pn=" + escape(settings.MerchantName) +
		amount +
		"&cu=" + settings.Currency, nil
}

// escape кодирует пробел как %20, а не +
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
