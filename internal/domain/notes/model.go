package notes

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// NoteType identifies the clinical note template a note was written against.
type NoteType string

const (
	TypeIntake        NoteType = "intake"
	TypeProgressNote  NoteType = "progress_note"
	TypeTreatmentPlan NoteType = "treatment_plan"
	TypeContactNote   NoteType = "contact_note"
	TypeConsultation  NoteType = "consultation_note"
	TypeCancellation  NoteType = "cancellation_note"
	TypeMiscellaneous NoteType = "miscellaneous_note"
)

var validNoteTypes = map[NoteType]bool{
	TypeIntake: true, TypeProgressNote: true, TypeTreatmentPlan: true,
	TypeContactNote: true, TypeConsultation: true, TypeCancellation: true,
	TypeMiscellaneous: true,
}

func ValidNoteType(t NoteType) bool { return validNoteTypes[t] }

// Status is the lifecycle state of a note. The set is closed; anything else
// is rejected at the boundary.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted_for_review"
	StatusSigned    Status = "signed"
	StatusLocked    Status = "locked"
)

var validStatuses = map[Status]bool{
	StatusDraft: true, StatusSubmitted: true, StatusSigned: true, StatusLocked: true,
}

func ValidStatus(s Status) bool { return validStatuses[s] }

// Transition names a requested lifecycle change. Legality is decided by the
// transitions table below, never by ad-hoc status checks.
type Transition string

const (
	TransitionSaveDraft Transition = "save_draft"
	TransitionSubmit    Transition = "submit"
	TransitionSign      Transition = "sign"
	TransitionCoSign    Transition = "co_sign"
	TransitionLock      Transition = "lock"
	TransitionUnlock    Transition = "unlock"
	TransitionDelete    Transition = "delete"
)

// transitions maps (current status, requested transition) to legality.
// Co-sign, lock and unlock do not leave the signed/locked pair; co-sign is a
// single-shot attribute change enforced separately in the service.
var transitions = map[Status]map[Transition]bool{
	StatusDraft: {
		TransitionSaveDraft: true,
		TransitionSubmit:    true,
		TransitionSign:      true,
		TransitionDelete:    true,
	},
	StatusSubmitted: {
		TransitionSign: true,
	},
	StatusSigned: {
		TransitionCoSign: true,
		TransitionLock:   true,
	},
	StatusLocked: {
		TransitionUnlock: true,
	},
}

// CanTransition reports whether the transition is legal from the given status.
func CanTransition(from Status, t Transition) bool {
	return transitions[from][t]
}

// Content is the section-key to value mapping a note carries. The set of
// meaningful keys varies by note type; unknown keys are preserved untouched.
type Content map[string]interface{}

// Note maps to the notes table.
type Note struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ClientID   uuid.UUID  `db:"client_id" json:"client_id"`
	ProviderID uuid.UUID  `db:"provider_id" json:"provider_id"`
	NoteType   NoteType   `db:"note_type" json:"note_type"`
	Title      string     `db:"title" json:"title"`
	Content    Content    `db:"content" json:"content"`
	Status     Status     `db:"status" json:"status"`
	Version    int        `db:"version" json:"version"`
	SignedBy   *string    `db:"signed_by" json:"signed_by,omitempty"`
	SignedAt   *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CoSignedBy *string    `db:"co_signed_by" json:"co_signed_by,omitempty"`
	CoSignedAt *time.Time `db:"co_signed_at" json:"co_signed_at,omitempty"`
	ApprovedBy *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	LockedAt   *time.Time `db:"locked_at" json:"locked_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// HistoryEntry maps to the note_history table. Rows are append-only
// snapshots, one per note version. The updated_* flags record which fields
// changed relative to the prior version.
type HistoryEntry struct {
	ID             uuid.UUID `db:"id" json:"id"`
	NoteID         uuid.UUID `db:"note_id" json:"note_id"`
	Version        int       `db:"version" json:"version"`
	Title          string    `db:"title" json:"title"`
	Content        Content   `db:"content" json:"content"`
	Status         Status    `db:"status" json:"status"`
	UpdatedTitle   bool      `db:"updated_title" json:"updated_title"`
	UpdatedContent bool      `db:"updated_content" json:"updated_content"`
	UpdatedStatus  bool      `db:"updated_status" json:"updated_status"`
	UpdatedBy      uuid.UUID `db:"updated_by" json:"updated_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// snapshot captures the note's versioned fields into a history row, diffed
// against the note's state before the mutation. A nil prev marks creation,
// where every field counts as updated.
func snapshot(n *Note, prev *Note, updatedBy uuid.UUID) *HistoryEntry {
	content := make(Content, len(n.Content))
	for k, v := range n.Content {
		content[k] = v
	}
	e := &HistoryEntry{
		NoteID:         n.ID,
		Version:        n.Version,
		Title:          n.Title,
		Content:        content,
		Status:         n.Status,
		UpdatedTitle:   true,
		UpdatedContent: true,
		UpdatedStatus:  true,
		UpdatedBy:      updatedBy,
	}
	if prev != nil {
		e.UpdatedTitle = prev.Title != n.Title
		e.UpdatedContent = !reflect.DeepEqual(prev.Content, n.Content)
		e.UpdatedStatus = prev.Status != n.Status
	}
	return e
}
