package ledger

import (
	"sort"

	"github.com/iurnickita/aquamanager/internal/model"
)

// ScheduleReminder добавляет напоминание. На журнал не влияет.
func (e *Engine) ScheduleReminder(s *model.State, customerID string, date string, kind model.ReminderType, note string) (*model.ScheduledReminder, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	if kind != model.ReminderUpcomingDelivery && kind != model.ReminderPaymentDue {
		return nil, ErrInvalidType
	}
	if s.FindCustomer(customerID) < 0 {
		return nil, nil
	}

	reminder := model.ScheduledReminder{
		ID:            e.newID(),
		CustomerID:    customerID,
		ScheduledDate: date,
		Type:          kind,
		Status:        model.ReminderPending,
		Note:          note,
	}
	s.Reminders = append(s.Reminders, reminder)

	return &reminder, nil
}

func (e *Engine) MarkReminderSent(s *model.State, id string) bool {
	idx := s.FindReminder(id)
	if idx < 0 || s.Reminders[idx].Status == model.ReminderSent {
		return false
	}
	s.Reminders[idx].Status = model.ReminderSent
	return true
}

func (e *Engine) DeleteReminder(s *model.State, id string) bool {
	idx := s.FindReminder(id)
	if idx < 0 {
		return false
	}
	s.Reminders = append(s.Reminders[:idx], s.Reminders[idx+1:]...)
	return true
}

// PendingReminders - неотправленные напоминания по возрастанию даты
func PendingReminders(s *model.State) []model.ScheduledReminder {
	var out []model.ScheduledReminder
	for _, r := range s.Reminders {
		if r.Status == model.ReminderPending {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate < out[j].ScheduledDate
	})
	return out
}

// DueReminders - неотправленные напоминания с датой не позже today
func DueReminders(s *model.State, today string) []model.ScheduledReminder {
	var out []model.ScheduledReminder
	for _, r := range PendingReminders(s) {
		if r.ScheduledDate <= today {
			out = append(out, r)
		}
	}
	return out
}
