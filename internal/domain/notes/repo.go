package notes

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the sole persistence boundary for notes and their history.
// Update performs a version-checked conditional write and returns
// *ConflictError when the expected version no longer matches.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Note, int, error)

	AppendHistory(ctx context.Context, e *HistoryEntry) error
	ListHistory(ctx context.Context, noteID uuid.UUID) ([]*HistoryEntry, error)
	GetHistoryVersion(ctx context.Context, noteID uuid.UUID, version int) (*HistoryEntry, error)
}
