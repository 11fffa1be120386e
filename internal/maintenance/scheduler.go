// Package maintenance runs chart-of-accounts reconciliation in the background.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/ledger-be/internal/services"
	"github.com/isdelr/ledger-be/internal/websocket"
)

// runTimeout bounds a single reconciliation run.
const runTimeout = 5 * time.Minute

// Broadcaster pushes a message to every connected client.
type Broadcaster interface {
	BroadcastMessage(msg websocket.Message)
}

// Scheduler reconciles once on start and then on an optional cron schedule.
type Scheduler struct {
	svc    services.MaintenanceServiceProvider
	spec   string
	notify Broadcaster
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. An empty spec reconciles at startup only.
// When notify is set, clients are told to reload after a run that changed anything.
func NewScheduler(svc services.MaintenanceServiceProvider, spec string, notify Broadcaster) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		svc:    svc,
		spec:   spec,
		notify: notify,
		cron:   cron.New(cron.WithLogger(cronLogger{}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the startup run without waiting for it and registers the
// periodic job when a schedule is configured.
func (s *Scheduler) Start() error {
	if s.spec != "" {
		if _, err := cron.ParseStandard(s.spec); err != nil {
			return fmt.Errorf("invalid reconcile schedule %q: %w", s.spec, err)
		}
		if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
			return err
		}
	}

	log.Info().Str("schedule", s.spec).Msg("Starting reconciliation scheduler")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
	s.cron.Start()
	return nil
}

// Stop cancels any run in progress and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Info().Msg("Stopped reconciliation scheduler")
}

func (s *Scheduler) run() {
	if s.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.svc.Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reconciliation failed")
		return
	}
	log.Info().
		Int("codes_backfilled", result.CodesBackfilled).
		Int("accounts_inserted", result.AccountsInserted).
		Dur("duration", time.Since(start)).
		Msg("Reconciliation finished")

	if s.notify != nil && result.CodesBackfilled+result.AccountsInserted > 0 {
		s.notify.BroadcastMessage(websocket.NewChartChangedMessage())
	}
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
