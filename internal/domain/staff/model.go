package staff

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Role determines what a staff member may do across the API and inside the
// note lifecycle policy.
const (
	RoleClinician   = "clinician"
	RoleSupervisor  = "supervisor"
	RoleAdmin       = "admin"
	RoleBiller      = "biller"
	RoleFrontOffice = "front_office"
)

// Staff maps to the staff table.
type Staff struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Active       bool       `db:"active" json:"active"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Credentials  *string    `db:"credentials" json:"credentials,omitempty"`
	Role         string     `db:"role" json:"role"`
	SupervisorID *uuid.UUID `db:"supervisor_id" json:"supervisor_id,omitempty"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName is the name shown on notes and schedules, with professional
// credentials when present.
func (s *Staff) DisplayName() string {
	name := s.FirstName + " " + s.LastName
	if s.Credentials != nil && *s.Credentials != "" {
		return name + ", " + *s.Credentials
	}
	return name
}

func (s *Staff) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.Role, validation.Required,
			validation.In(RoleClinician, RoleSupervisor, RoleAdmin, RoleBiller, RoleFrontOffice)),
		validation.Field(&s.Email, validation.Required, is.EmailFormat),
	)
}
