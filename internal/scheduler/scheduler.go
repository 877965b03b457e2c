package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/ledger"
	"github.com/iurnickita/aquamanager/internal/model"
)

// StateSource отдает копию текущего состояния
type StateSource interface {
	State() *model.State
}

// Report - результат одного прохода
type Report struct {
	Due        []model.ScheduledReminder
	Mismatches []balance.Mismatch
}

// Digest периодически пишет в лог напоминания, срок которых наступил,
// и сверяет балансы с журналом. Состояние не меняет.
type Digest struct {
	source StateSource
	zaplog *zap.Logger
	now    func() time.Time
}

func NewDigest(source StateSource, zaplog *zap.Logger, now func() time.Time) *Digest {
	if now == nil {
		now = time.Now
	}
	return &Digest{source: source, zaplog: zaplog, now: now}
}

func (d *Digest) Run() Report {
	state := d.source.State()
	today := model.FormatDate(d.now())

	report := Report{
		Due:        ledger.DueReminders(state, today),
		Mismatches: balance.Reconcile(state),
	}

	for _, r := range report.Due {
		d.zaplog.Info("reminder due",
			zap.String("reminder", r.ID),
			zap.String("customer", r.CustomerID),
			zap.String("type", string(r.Type)),
			zap.String("date", r.ScheduledDate),
		)
	}
	for _, m := range report.Mismatches {
		d.zaplog.Error("balance does not match ledger",
			zap.String("customer", m.CustomerID),
			zap.String("cached", m.Cached.String()),
			zap.String("derived", m.Derived.String()),
		)
	}
	return report
}

// Start запускает проход каждые interval до отмены ctx
func (d *Digest) Start(ctx context.Context, interval time.Duration) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			d.Run()
		}),
	)
	if err != nil {
		return err
	}

	d.zaplog.Info("reminder digest started", zap.Duration("interval", interval))
	scheduler.Start()

	<-ctx.Done()
	return scheduler.Shutdown()
}
