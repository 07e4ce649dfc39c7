package reminder

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"creances/internal"
	"creances/internal/config"
)

// Report summarizes one reminder pass.
type Report struct {
	Eligible  int  `json:"eligible"`
	Sent      int  `json:"sent"`
	NoMapping int  `json:"noMapping"`
	Failed    int  `json:"failed"`
	Audited   int  `json:"audited"`
	Automatic bool `json:"automatic"`
}

// Dispatcher is the store-side operation the scheduler drives.
type Dispatcher interface {
	SendReminders(ctx context.Context, account internal.EmailAccount, template, contact string, periodDays int, automatic bool) (Report, error)
}

// Scheduler runs the reminder dispatch on a cron schedule.
type Scheduler struct {
	cfg  config.Config
	log  *zap.Logger
	disp Dispatcher
}

func NewScheduler(cfg config.Config, log *zap.Logger, disp Dispatcher) *Scheduler {
	return &Scheduler{cfg: cfg, log: log, disp: disp}
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	account := internal.EmailAccount{
		Name:     s.cfg.SenderName,
		Address:  s.cfg.SenderAddress,
		SMTPHost: s.cfg.SMTPHost,
		SMTPPort: s.cfg.SMTPPort,
		Username: s.cfg.SMTPUser,
		Password: s.cfg.SMTPPassword,
	}

	c := cron.New()
	_, err := c.AddFunc(s.cfg.ReminderSchedule, func() {
		report, err := s.disp.SendReminders(ctx, account, DefaultTemplate, s.cfg.ReminderContact, s.cfg.ReminderPeriodDays, true)
		if err != nil {
			s.log.Error("cycle de rappel en échec", zap.Error(err))
			return
		}
		s.log.Info("cycle de rappel terminé",
			zap.Int("eligible", report.Eligible),
			zap.Int("sent", report.Sent),
			zap.Int("noMapping", report.NoMapping),
			zap.Int("failed", report.Failed))
	})
	if err != nil {
		return err
	}

	c.Start()
	s.log.Info("planificateur de rappels démarré", zap.String("schedule", s.cfg.ReminderSchedule))
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
