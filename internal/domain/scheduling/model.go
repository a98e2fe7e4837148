package scheduling

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

// requiredUUID rejects the zero UUID, which ozzo's Required check does not
// catch for fixed-size array types.
func requiredUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); !ok || id == uuid.Nil {
		return errRequired
	}
	return nil
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ClientID   uuid.UUID `db:"client_id" json:"client_id"`
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Status     string    `db:"status" json:"status"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Location   *string   `db:"location" json:"location,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (a *Appointment) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ClientID, validation.By(requiredUUID)),
		validation.Field(&a.ProviderID, validation.By(requiredUUID)),
		validation.Field(&a.Status, validation.Required,
			validation.In(StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow)),
		validation.Field(&a.StartTime, validation.Required),
		validation.Field(&a.EndTime, validation.Required,
			validation.By(func(interface{}) error {
				if !a.EndTime.After(a.StartTime) {
					return errEndBeforeStart
				}
				return nil
			})),
	)
}
