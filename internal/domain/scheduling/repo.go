package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// HasOverlap reports whether the provider already has a non-cancelled
	// appointment intersecting [start, end), excluding the given id.
	HasOverlap(ctx context.Context, providerID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error)
}
