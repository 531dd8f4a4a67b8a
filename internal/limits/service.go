package limits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playsafe/rgportal/pkg/domain"
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("limits: submission already in progress")

// Gateway is the subset of the API client used by the service.
type Gateway interface {
	GetMyLimits(ctx context.Context) (*domain.LimitsSnapshot, error)
	SetLimits(ctx context.Context, payload map[string]any) (*domain.SetLimitsResult, error)
}

// ConfigUpdater receives currency changes reported by the backend.
type ConfigUpdater interface {
	UpdateConfig(ctx context.Context, patch domain.Config) error
}

// Outcome describes a successful submission.
type Outcome struct {
	Message string
	// Locked lists the controls the backend just locked in.
	Locked []string
	// Snapshot is the re-fetched snapshot, or nil if RefreshErr is set.
	Snapshot   *domain.LimitsSnapshot
	RefreshErr error
}

// Service loads and submits limits, caching the last good snapshot.
type Service struct {
	gw     Gateway
	cfg    ConfigUpdater
	logger *slog.Logger

	mu           sync.Mutex
	snap         *domain.LimitsSnapshot
	busy         bool
	pendingLocks []string
	// gen is bumped by Reset; responses from an older generation are discarded.
	gen uint64
}

// NewService creates a Service. cfg may be nil.
func NewService(gw Gateway, cfg ConfigUpdater, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gw: gw, cfg: cfg, logger: logger}
}

// Snapshot returns the last successfully fetched snapshot, or nil.
func (s *Service) Snapshot() *domain.LimitsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Fetch loads the current snapshot. On failure the cached snapshot is kept.
func (s *Service) Fetch(ctx context.Context) (*domain.LimitsSnapshot, error) {
	gen := s.generation()
	snap, err := s.gw.GetMyLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("limits.Fetch: %w", err)
	}
	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.snap = snap
	}
	s.mu.Unlock()

	if !current {
		s.logger.Debug("discarding limits fetched before reset")
		return snap, nil
	}
	s.propagateCurrency(ctx, gen, snap.Currency)
	return snap, nil
}

func (s *Service) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Service) propagateCurrency(ctx context.Context, gen uint64, currency *string) {
	if s.cfg == nil || currency == nil || *currency == "" {
		return
	}
	if s.generation() != gen {
		return
	}
	if err := s.cfg.UpdateConfig(ctx, domain.CurrencyPatch(*currency)); err != nil {
		s.logger.Warn("could not persist currency", "currency", *currency, "error", err)
	}
}

// Submit validates the form, sends it and re-fetches the snapshot. Local
// validation failures never reach the network.
func (s *Service) Submit(ctx context.Context, form *Form) (*Outcome, error) {
	payload, err := form.Payload()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	gen := s.gen
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	res, err := s.gw.SetLimits(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("limits.Submit: %w", err)
	}
	s.logger.Info("limits submitted", "controls", len(payload), "locked", res.ControlsSet)
	s.propagateCurrency(ctx, gen, res.Currency)

	out := &Outcome{Message: res.Message, Locked: res.ControlsSet}
	if out.Message == "" {
		out.Message = MsgSaved
	}
	if len(res.ControlsSet) > 0 {
		s.mu.Lock()
		if s.gen == gen {
			s.pendingLocks = append([]string(nil), res.ControlsSet...)
		}
		s.mu.Unlock()
	}

	snap, err := s.Fetch(ctx)
	if err != nil {
		s.logger.Warn("refresh after submit failed", "error", err)
		out.RefreshErr = err
	}
	out.Snapshot = snap
	return out, nil
}

// Busy reports whether a submission is in flight.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// PendingLocks returns lock-ins not yet acknowledged.
func (s *Service) PendingLocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pendingLocks...)
}

// Settled reports whether every lock-in notice has been acknowledged.
func (s *Service) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingLocks) == 0
}

// AcknowledgeLocks clears the pending lock-in notice.
func (s *Service) AcknowledgeLocks() {
	s.mu.Lock()
	s.pendingLocks = nil
	s.mu.Unlock()
}

// Reset drops the cached snapshot, e.g. after logout. Calls still in flight
// will not repopulate it.
func (s *Service) Reset() {
	s.mu.Lock()
	s.gen++
	s.snap = nil
	s.pendingLocks = nil
	s.mu.Unlock()
}
