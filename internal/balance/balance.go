package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/model"
)

// Mismatch - клиент, у которого сохраненный баланс разошелся с журналом
type Mismatch struct {
	CustomerID string          `json:"customerId"`
	Cached     decimal.Decimal `json:"cached"`
	Derived    decimal.Decimal `json:"derived"`
}

// Derive считает баланс клиента по журналу: сумма BILL минус сумма PAYMENT
func Derive(transactions []model.Transaction, customerID string) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range transactions {
		if tx.CustomerID != customerID {
			continue
		}
		switch tx.Type {
		case model.TransactionBill:
			sum = sum.Add(tx.Amount)
		case model.TransactionPayment:
			sum = sum.Sub(tx.Amount)
		}
	}
	return sum
}

// Reconcile сверяет балансы всех клиентов с журналом
func Reconcile(s *model.State) []Mismatch {
	var out []Mismatch
	for _, c := range s.Customers {
		derived := Derive(s.Transactions, c.ID)
		if !derived.Equal(c.Balance) {
			out = append(out, Mismatch{CustomerID: c.ID, Cached: c.Balance, Derived: derived})
		}
	}
	return out
}

// History - операции клиента, новые первыми (по времени создания, не по дате)
func History(s *model.State, customerID string) []model.Transaction {
	return filter(s.Transactions, func(tx model.Transaction) bool {
		return tx.CustomerID == customerID
	})
}

// Payments - оплаты клиента, новые первыми
func Payments(s *model.State, customerID string) []model.Transaction {
	return filter(s.Transactions, func(tx model.Transaction) bool {
		return tx.CustomerID == customerID && tx.Type == model.TransactionPayment
	})
}

// Deliveries - доставки, новые первыми. Пустой customerID - все клиенты.
func Deliveries(s *model.State, customerID string) []model.Delivery {
	out := make([]model.Delivery, 0, len(s.Deliveries))
	for _, d := range s.Deliveries {
		if customerID == "" || d.CustomerID == customerID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Outstanding - общая задолженность клиентов
func Outstanding(customers []model.Customer) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range customers {
		sum = sum.Add(c.Balance)
	}
	return sum
}

// Total - сумма операций указанного типа
func Total(transactions []model.Transaction, kind model.TransactionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == kind {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// filter сохраняет порядок журнала (новые записи в начале), поэтому при равных timestamp позже добавленные остаются первыми
func filter(transactions []model.Transaction, keep func(model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0)
	for _, tx := range transactions {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
