package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"rowlly_listings/config"
	"rowlly_listings/logging"
	"rowlly_listings/models"
)

// Triggerable allows workers to be triggered manually
type Triggerable interface {
	Trigger()
}

// PropertyTriggerable is a worker that can also be pointed at one listing.
type PropertyTriggerable interface {
	Triggerable
	TriggerProperty(propertyID string)
}

// Reloader swaps in a fresh catalog snapshot.
type Reloader interface {
	Reload(ctx context.Context) error
}

// CommandQueue is the local table operators drop commands into.
type CommandQueue interface {
	GetPendingCommands() ([]models.Command, error)
	MarkCommandProcessed(id int64) error
	ParseCommandParams(cmd *models.Command) (*models.CommandParams, error)
	ResetAllData() error
}

type Scheduler struct {
	cfg       config.SchedulerConfig
	listings  Reloader
	queue     CommandQueue
	cron      *cron.Cron
	ticker    *time.Ticker
	stopCh    chan struct{}
	pollEvery time.Duration

	imageWorker PropertyTriggerable
}

func New(cfg config.SchedulerConfig, listings Reloader, queue CommandQueue) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		listings:  listings,
		queue:     queue,
		cron:      cron.New(),
		stopCh:    make(chan struct{}),
		pollEvery: 2 * time.Second,
	}
}

// SetWorkers registers background workers for manual triggering
func (s *Scheduler) SetWorkers(images PropertyTriggerable) {
	s.imageWorker = images
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Cron != "" {
		logging.Infof("Starting catalog reloads with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.reload(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		logging.Infof("Starting catalog reloads every %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.reload(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		logging.Infof("No reload schedule configured, catalog reloads only on command")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) reload(ctx context.Context) {
	if err := s.listings.Reload(ctx); err != nil {
		logging.Errorf("Scheduled catalog reload: %v", err)
	}
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processCommands(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) processCommands(ctx context.Context) {
	cmds, err := s.queue.GetPendingCommands()
	if err != nil {
		logging.Errorf("Error getting commands: %v", err)
		return
	}

	for _, cmd := range cmds {
		logging.Infof("Processing command: %s", cmd.Command)
		if err := s.handleCommand(ctx, &cmd); err != nil {
			logging.Errorf("Command %d (%s): %v", cmd.ID, cmd.Command, err)
		}
		if err := s.queue.MarkCommandProcessed(cmd.ID); err != nil {
			logging.Errorf("Error marking command processed: %v", err)
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdReloadCatalog:
		return s.listings.Reload(ctx)
	case models.CmdCheckImages:
		if s.imageWorker == nil {
			return fmt.Errorf("image checks are disabled")
		}
		params, err := s.queue.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("bad params: %w", err)
		}
		if params.PropertyID != "" {
			s.imageWorker.TriggerProperty(params.PropertyID)
		} else {
			s.imageWorker.Trigger()
		}
		logging.Infof("Image check worker triggered via command")
		return nil
	case models.CmdResetData:
		if err := s.queue.ResetAllData(); err != nil {
			return err
		}
		logging.Warnf("Local data reset via command")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
}
