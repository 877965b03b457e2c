package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/model"
)

type NewCustomer struct {
	Name        string
	Phone       string
	Address     string
	PricePerJar decimal.Decimal
}

// CustomerUpdate - изменяемые поля клиента. Баланс и id не редактируются:
// баланс выводится из журнала.
type CustomerUpdate struct {
	Name                   *string
	Phone                  *string
	Address                *string
	PricePerJar            *decimal.Decimal
	Active                 *bool
	AverageConsumptionDays *float64
}

// AddCustomer добавляет клиента в начало списка с нулевым балансом
func (e *Engine) AddCustomer(s *model.State, in NewCustomer) (model.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Customer{}, ErrNameRequired
	}
	if in.PricePerJar.IsNegative() {
		return model.Customer{}, ErrInvalidPrice
	}

	customer := model.Customer{
		ID:          e.newID(),
		Name:        in.Name,
		Phone:       in.Phone,
		Address:     in.Address,
		PricePerJar: in.PricePerJar,
		Balance:     decimal.Zero,
		Active:      true,
	}
	s.Customers = append([]model.Customer{customer}, s.Customers...)

	return customer, nil
}

// EditCustomer применяет изменения; неизвестный id - no-op
func (e *Engine) EditCustomer(s *model.State, id string, upd CustomerUpdate) (*model.Customer, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, ErrNameRequired
	}
	if upd.PricePerJar != nil && upd.PricePerJar.IsNegative() {
		return nil, ErrInvalidPrice
	}
	idx := s.FindCustomer(id)
	if idx < 0 {
		return nil, nil
	}

	c := &s.Customers[idx]
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.PricePerJar != nil {
		c.PricePerJar = *upd.PricePerJar
	}
	if upd.Active != nil {
		c.Active = *upd.Active
	}
	if upd.AverageConsumptionDays != nil {
		days := *upd.AverageConsumptionDays
		c.AverageConsumptionDays = &days
	}

	out := *c
	return &out, nil
}

// DeleteCustomer убирает клиента. Операции журнала остаются.
func (e *Engine) DeleteCustomer(s *model.State, id string) bool {
	idx := s.FindCustomer(id)
	if idx < 0 {
		return false
	}
	s.Customers = append(s.Customers[:idx], s.Customers[idx+1:]...)
	return true
}
