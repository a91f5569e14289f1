// Package scheduler drives the daily briefing on a cron schedule and answers
// chat commands.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"marketbrief/internal/briefing"
	"marketbrief/internal/macro"
	"marketbrief/internal/notifier"
	"marketbrief/internal/recorder"
	"marketbrief/internal/report"
)

// Scheduler owns the cron loop, the briefing runner and delivery.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *briefing.Runner
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Ctx      context.Context

	// RunTimeout bounds one full briefing run.
	RunTimeout time.Duration

	log *logrus.Entry
}

func NewScheduler(ctx context.Context, runner *briefing.Runner, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Runner:     runner,
		Notifier:   n,
		Recorder:   rec,
		Ctx:        ctx,
		RunTimeout: 15 * time.Minute,
		log:        logrus.WithField("component", "scheduler"),
	}
}

// RegisterAll registers the daily briefing task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyBriefing); err != nil {
		return fmt.Errorf("register daily briefing: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info("scheduler stopped")
}

// RunDailyNow executes the briefing immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyBriefing()
}

func (s *Scheduler) dailyBriefing() {
	s.log.Info("running daily briefing")
	ctx, cancel := context.WithTimeout(s.Ctx, s.RunTimeout)
	defer cancel()

	rep, err := s.Runner.Run(ctx)
	if err != nil {
		s.log.WithError(err).Error("briefing run aborted")
		s.trySend(fmt.Sprintf("❌ Briefing run aborted: %v", err))
		return
	}

	s.trySend(report.FormatBriefing(rep))

	if err := s.Recorder.RecordRun(rep); err != nil {
		s.log.WithError(err).Error("record run")
	}
}

// HandleCommand processes a chat command and returns a reply. /brief runs the
// full briefing (delivered asynchronously through the normal path).
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/brief":
		go s.dailyBriefing()
		return "Briefing started, results follow shortly."
	case "/spread":
		return s.spreadCommand()
	case "/macro":
		return s.macroCommand()
	default:
		return "Commands:\n• /brief - full market briefing\n• /spread - kimchi premium now\n• /macro - macro indicators"
	}
}

// spreadCommand runs the spread batch alone, with a fresh FX rate.
func (s *Scheduler) spreadCommand() string {
	if s.Runner.Spreads == nil {
		return "Spread collection is not configured."
	}
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Minute)
	defer cancel()

	fx := s.Runner.FallbackFX
	fallback := true
	rep := &briefing.Report{FXRate: fx, FXFallback: true}
	if s.Runner.Rates != nil {
		if rate, source, err := s.Runner.Rates.AcquireRate(ctx, "USD", "KRW"); err == nil {
			fx, fallback = rate, false
			rep.FXRate, rep.FXFallback, rep.FXSource = rate, false, source
		}
	}
	rep.Spreads, rep.SpreadFails = s.Runner.Spreads.CollectAll(ctx, fx, fallback)
	return report.FormatSpreads(rep)
}

func (s *Scheduler) macroCommand() string {
	if s.Runner.Macro == nil {
		return "Macro collection is not configured."
	}
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Minute)
	defer cancel()

	rep := &briefing.Report{Macro: s.Runner.Macro.CollectAll(ctx)}
	rep.Sentiment = macro.SentimentSummary(rep.Macro)
	return report.FormatMacro(rep)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
