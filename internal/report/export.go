package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/iurnickita/aquamanager/internal/model"
)

var customersHeader = []string{"id", "name", "phone", "address", "pricePerJar", "balance", "active"}

// WriteCustomersCSV выгружает список клиентов для таблиц
func WriteCustomersCSV(w io.Writer, customers []model.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(customersHeader); err != nil {
		return err
	}
	for _, c := range customers {
		err := cw.Write([]string{
			c.ID,
			c.Name,
			c.Phone,
			c.Address,
			c.PricePerJar.StringFixed(2),
			c.Balance.StringFixed(2),
			strconv.FormatBool(c.Active),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var printer = message.NewPrinter(language.English)

// FormatMoney - сумма с разделителями разрядов и кодом валюты: "INR 1,234.50"
func FormatMoney(amount decimal.Decimal, currency string) string {
	return currency + " " + printer.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
}
