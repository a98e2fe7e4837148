package clients

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Client maps to the clients table.
type Client struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Status            string     `db:"status" json:"status"`
	FirstName         string     `db:"first_name" json:"first_name"`
	LastName          string     `db:"last_name" json:"last_name"`
	PreferredName     *string    `db:"preferred_name" json:"preferred_name,omitempty"`
	BirthDate         *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender            *string    `db:"gender" json:"gender,omitempty"`
	PhoneMobile       *string    `db:"phone_mobile" json:"phone_mobile,omitempty"`
	Email             *string    `db:"email" json:"email,omitempty"`
	AddressLine1      *string    `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2      *string    `db:"address_line2" json:"address_line2,omitempty"`
	City              *string    `db:"city" json:"city,omitempty"`
	State             *string    `db:"state" json:"state,omitempty"`
	PostalCode        *string    `db:"postal_code" json:"postal_code,omitempty"`
	EmergencyContact  *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone    *string    `db:"emergency_phone" json:"emergency_phone,omitempty"`
	PrimaryProviderID *uuid.UUID `db:"primary_provider_id" json:"primary_provider_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusDischarged = "discharged"
)

// DisplayName is the name shown in note history and schedules.
func (c *Client) DisplayName() string {
	if c.PreferredName != nil && *c.PreferredName != "" {
		return *c.PreferredName + " " + c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// Validate checks the record before it is written.
func (c *Client) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Status, validation.Required,
			validation.In(StatusActive, StatusInactive, StatusDischarged)),
		validation.Field(&c.Email, is.EmailFormat),
	)
}
