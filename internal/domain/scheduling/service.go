package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	errEndBeforeStart = errors.New("must be after the start time")
	errRequired       = errors.New("is required")

	// ErrProviderConflict means the provider is already booked for an
	// overlapping slot.
	ErrProviderConflict = errors.New("provider already has an appointment in this time slot")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := a.Validate(); err != nil {
		return err
	}
	overlap, err := s.repo.HasOverlap(ctx, a.ProviderID, a.StartTime, a.EndTime, uuid.Nil)
	if err != nil {
		return err
	}
	if overlap {
		return ErrProviderConflict
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	overlap, err := s.repo.HasOverlap(ctx, a.ProviderID, a.StartTime, a.EndTime, a.ID)
	if err != nil {
		return err
	}
	if overlap {
		return ErrProviderConflict
	}
	return s.repo.Update(ctx, a)
}

// SetStatus moves an appointment through its (unordered) status set.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, errors.New("invalid status: " + status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.SetStatus(ctx, id, StatusCancelled)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return s.repo.ListByProvider(ctx, providerID, from, to)
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}
