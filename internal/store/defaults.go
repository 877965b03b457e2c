package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/model"
)

func DefaultSettings() model.BusinessSettings {
	return model.BusinessSettings{
		MerchantUpiID:     "merchant@upi",
		MerchantName:      "Aqua Manager Services",
		Currency:          "INR",
		AutoSmsPreference: false,
	}
}

// DefaultState - стартовый документ с демонстрационными клиентами.
// Начальный долг клиента проведен операцией BILL, иначе баланс не сходится с журналом.
func DefaultState(now time.Time) *model.State {
	seed := []struct {
		id, name, phone, address string
		price, balance           int64
	}{
		{"c1", "Green Valley Gym", "9876543210", "12 Main St", 40, 120},
		{"c2", "Sunrise Apartments", "9876543211", "45 Lake View", 35, 0},
		{"c3", "Tech Solutions Office", "9876543212", "Indiranagar, Block 4", 50, 500},
	}

	state := Backfill(&model.State{Settings: DefaultSettings()})
	for _, c := range seed {
		state.Customers = append(state.Customers, model.Customer{
			ID:          c.id,
			Name:        c.name,
			Phone:       c.phone,
			Address:     c.address,
			PricePerJar: decimal.NewFromInt(c.price),
			Balance:     decimal.NewFromInt(c.balance),
			Active:      true,
		})
		if c.balance == 0 {
			continue
		}
		state.Transactions = append(state.Transactions, model.Transaction{
			ID:         "bill_open_" + c.id,
			CustomerID: c.id,
			Date:       model.FormatDate(now),
			Amount:     decimal.NewFromInt(c.balance),
			Type:       model.TransactionBill,
			Notes:      "Opening balance",
			Timestamp:  now.UnixMilli(),
		})
	}
	return state
}
