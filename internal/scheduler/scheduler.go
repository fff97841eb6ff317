package scheduler

import (
	"context"
	"time"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
)

// Band describes the scheduler's behavior for a slice of the day.
type Band struct {
	Name     string
	AutoSync bool
	Interval time.Duration
}

// Options bound the time-of-day bands. Hours are local wall-clock, end
// exclusive: off-peak [OffPeakStartHour, OffPeakEndHour), busy
// [BusyStartHour, BusyEndHour), everything else manual-only.
type Options struct {
	OffPeakStartHour int
	OffPeakEndHour   int
	BusyStartHour    int
	BusyEndHour      int

	OffPeakInterval time.Duration
	BusyInterval    time.Duration
	IdleInterval    time.Duration
}

// DefaultOptions matches the office's rhythm: mail arrives all morning and
// is registered in bulk during the 14:00-17:00 rush.
func DefaultOptions(offPeak, busy, idle time.Duration) Options {
	return Options{
		OffPeakStartHour: 8,
		OffPeakEndHour:   14,
		BusyStartHour:    14,
		BusyEndHour:      17,
		OffPeakInterval:  offPeak,
		BusyInterval:     busy,
		IdleInterval:     idle,
	}
}

// PassFunc runs one sync pass against the current system configuration.
type PassFunc func(ctx context.Context, sys *model.SystemConfig) error

// Scheduler drives sync passes from wall-clock time bands, a manual sync
// signal and configuration changes. Exactly one pass runs at a time; all
// triggers are handled in a single goroutine, so passes can never overlap
// and pending triggers coalesce in their buffered channels.
type Scheduler struct {
	sync     PassFunc
	clock    Clock
	opts     Options
	manual   <-chan struct{}
	configCh <-chan *model.SystemConfig
	logger   *logger.Logger

	current *model.SystemConfig
}

func New(
	sync PassFunc,
	clock Clock,
	opts Options,
	manual <-chan struct{},
	configCh <-chan *model.SystemConfig,
	logger *logger.Logger,
) *Scheduler {
	return &Scheduler{
		sync:     sync,
		clock:    clock,
		opts:     opts,
		manual:   manual,
		configCh: configCh,
		logger:   logger,
	}
}

// BandAt returns the band covering t. The band for the next wait is always
// computed at evaluation time, never carried over from the previous cycle,
// so the cadence adjusts across band boundaries without a restart.
func (s *Scheduler) BandAt(t time.Time) Band {
	hour := t.Hour()
	switch {
	case hour >= s.opts.BusyStartHour && hour < s.opts.BusyEndHour:
		return Band{Name: "FREQUENT", AutoSync: true, Interval: s.opts.BusyInterval}
	case hour >= s.opts.OffPeakStartHour && hour < s.opts.OffPeakEndHour:
		return Band{Name: "RARE", AutoSync: true, Interval: s.opts.OffPeakInterval}
	default:
		return Band{Name: "OFF-HOURS (manual only)", AutoSync: false, Interval: s.opts.IdleInterval}
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler running, listening for manual sync triggers and config changes")

	for {
		if ctx.Err() != nil {
			return
		}

		band := s.BandAt(s.clock.Now())
		if band.AutoSync {
			s.runPass(ctx)
		}
		s.logger.Infof("Scheduler: %s, next check in %s", band.Name, band.Interval)

		wait := s.clock.After(band.Interval)
	waiting:
		for {
			select {
			case <-ctx.Done():
				return
			case <-wait:
				break waiting
			case _, ok := <-s.manual:
				if !ok {
					s.manual = nil
					continue
				}
				s.logger.Info("Manual sync requested by user")
				s.runPass(ctx)
				// The armed timer keeps running; the normal cadence resumes.
			case cfg, ok := <-s.configCh:
				if !ok {
					s.configCh = nil
					continue
				}
				if s.applyConfig(cfg) {
					// Fresh sync cycle: cancel the wait and re-evaluate now.
					break waiting
				}
			}
		}
	}
}

// applyConfig records the new configuration and reports whether the legacy
// database path changed, which restarts the sync cycle.
func (s *Scheduler) applyConfig(cfg *model.SystemConfig) bool {
	pathChanged := s.current == nil || s.current.LegacyDBPath != cfg.LegacyDBPath
	s.current = cfg
	if pathChanged && cfg.LegacyDBPath != "" {
		s.logger.Infof("Database path changed to: %s", cfg.LegacyDBPath)
		return true
	}
	return false
}

func (s *Scheduler) runPass(ctx context.Context) {
	if s.current == nil || s.current.LegacyDBPath == "" {
		s.logger.Warn("No database path configured, waiting for configuration")
		return
	}
	if err := s.sync(ctx, s.current); err != nil {
		// Already audited and reflected in status by the sync service.
		s.logger.Error("Sync pass failed:", err)
	}
}
