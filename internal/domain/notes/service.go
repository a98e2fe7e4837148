package notes

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/practicewell/practicewell/internal/platform/db"
)

// Action names an operation checked against the authorization gate.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionEdit   Action = "edit"
	ActionSubmit Action = "submit"
	ActionSign   Action = "sign"
	ActionCoSign Action = "co_sign"
	ActionLock   Action = "lock"
	ActionUnlock Action = "unlock"
	ActionDelete Action = "delete"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Roles []string
}

// AuthorizationGate decides whether an actor may perform an action on a
// note. The service treats it as opaque; policy lives with the caller.
type AuthorizationGate interface {
	CanPerform(ctx context.Context, actor Actor, action Action, n *Note) bool
}

// Directory resolves display names for the foreign references a note
// carries, used when enriching history reads.
type Directory interface {
	ClientName(ctx context.Context, id uuid.UUID) (string, error)
	ProviderName(ctx context.Context, id uuid.UUID) (string, error)
}

// Changes carries the editable fields of a draft. Nil fields are left
// unchanged.
type Changes struct {
	Title   *string
	Content Content
}

// CreateInput is the payload for a new draft note.
type CreateInput struct {
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	NoteType   NoteType
	Title      string
	Content    Content
}

// HistoryView is a history snapshot enriched with display fields.
type HistoryView struct {
	HistoryEntry
	NoteType     NoteType `json:"note_type"`
	ClientName   string   `json:"client_name,omitempty"`
	ProviderName string   `json:"provider_name,omitempty"`
}

// Service is the single authority for note lifecycle transitions. Every
// mutation is gated, checked against the transition table, validated, and
// persisted as a version bump plus one history row in a single transaction.
type Service struct {
	repo Repository
	gate AuthorizationGate
	tx   db.TxRunner
	dir  Directory
}

func NewService(repo Repository, gate AuthorizationGate, tx db.TxRunner, dir Directory) *Service {
	return &Service{repo: repo, gate: gate, tx: tx, dir: dir}
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*Note, error) {
	if !ValidNoteType(in.NoteType) {
		return nil, &ValidationError{Fields: []FieldError{{Key: "note_type", Message: "unknown note type"}}}
	}
	if in.ClientID == uuid.Nil {
		return nil, &ValidationError{Fields: []FieldError{{Key: "client_id", Message: "Client is required"}}}
	}
	if in.ProviderID == uuid.Nil {
		in.ProviderID = actor.ID
	}
	if in.Content == nil {
		in.Content = Content{}
	}
	if err := ValidateContent(in.NoteType, in.Content); err != nil {
		return nil, err
	}

	n := &Note{
		ClientID:   in.ClientID,
		ProviderID: in.ProviderID,
		NoteType:   in.NoteType,
		Title:      in.Title,
		Content:    in.Content,
		Status:     StatusDraft,
		Version:    1,
	}
	if !s.gate.CanPerform(ctx, actor, ActionCreate, n) {
		return nil, &AuthorizationError{Action: ActionCreate}
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
		return s.repo.AppendHistory(ctx, snapshot(n, nil, actor.ID))
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanPerform(ctx, actor, ActionRead, n) {
		return nil, &AuthorizationError{Action: ActionRead}
	}
	return n, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

// SaveDraft applies edits to a draft and bumps the version.
func (s *Service) SaveDraft(ctx context.Context, actor Actor, id uuid.UUID, ch Changes) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionSaveDraft) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionSaveDraft}
	}
	if !s.gate.CanPerform(ctx, actor, ActionEdit, n) {
		return nil, &AuthorizationError{Action: ActionEdit}
	}
	prev := *n
	applyChanges(n, ch)
	if err := ValidateContent(n.NoteType, n.Content); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// Submit moves a complete draft into review.
func (s *Service) Submit(ctx context.Context, actor Actor, id uuid.UUID) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionSubmit) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionSubmit}
	}
	if !s.gate.CanPerform(ctx, actor, ActionSubmit, n) {
		return nil, &AuthorizationError{Action: ActionSubmit}
	}
	if err := CheckFinalizable(n.NoteType, n.Content); err != nil {
		return nil, err
	}
	prev := *n
	n.Status = StatusSubmitted
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// Sign finalizes a note. Pending edits may ride along with the signature and
// are merged before re-validation, so sign-with-changes is a single version
// bump.
func (s *Service) Sign(ctx context.Context, actor Actor, id uuid.UUID, ch Changes, signature string) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionSign) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionSign}
	}
	if !s.gate.CanPerform(ctx, actor, ActionSign, n) {
		return nil, &AuthorizationError{Action: ActionSign}
	}
	if signature == "" {
		return nil, &ValidationError{Fields: []FieldError{{Key: "signature", Message: "Signature is required"}}}
	}
	prev := *n
	applyChanges(n, ch)
	if err := ValidateContent(n.NoteType, n.Content); err != nil {
		return nil, err
	}
	if err := CheckFinalizable(n.NoteType, n.Content); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n.Status = StatusSigned
	n.SignedBy = &signature
	n.SignedAt = &now
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// CoSign records the supervisor counter-signature on a signed note. It is
// single-shot: a second co-sign is rejected outright.
func (s *Service) CoSign(ctx context.Context, actor Actor, id uuid.UUID, signature string) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionCoSign) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionCoSign}
	}
	if n.CoSignedBy != nil {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionCoSign, Reason: "note is already co-signed"}
	}
	if !s.gate.CanPerform(ctx, actor, ActionCoSign, n) {
		return nil, &AuthorizationError{Action: ActionCoSign}
	}
	if signature == "" {
		return nil, &ValidationError{Fields: []FieldError{{Key: "signature", Message: "Signature is required"}}}
	}
	prev := *n
	now := time.Now().UTC()
	n.CoSignedBy = &signature
	n.CoSignedAt = &now
	actorID := actor.ID
	n.ApprovedBy = &actorID
	n.ApprovedAt = &now
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// Lock makes a signed note immutable.
func (s *Service) Lock(ctx context.Context, actor Actor, id uuid.UUID) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionLock) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionLock}
	}
	if !s.gate.CanPerform(ctx, actor, ActionLock, n) {
		return nil, &AuthorizationError{Action: ActionLock}
	}
	prev := *n
	now := time.Now().UTC()
	n.Status = StatusLocked
	n.LockedAt = &now
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// Unlock returns a locked note to signed. Gated to administrators by the
// authorization policy, not here.
func (s *Service) Unlock(ctx context.Context, actor Actor, id uuid.UUID) (*Note, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(n.Status, TransitionUnlock) {
		return nil, &InvalidStateError{Status: n.Status, Transition: TransitionUnlock}
	}
	if !s.gate.CanPerform(ctx, actor, ActionUnlock, n) {
		return nil, &AuthorizationError{Action: ActionUnlock}
	}
	prev := *n
	n.Status = StatusSigned
	n.LockedAt = nil
	if err := s.persist(ctx, n, &prev, actor.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a draft and its history.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(n.Status, TransitionDelete) {
		return &InvalidStateError{Status: n.Status, Transition: TransitionDelete}
	}
	if !s.gate.CanPerform(ctx, actor, ActionDelete, n) {
		return &AuthorizationError{Action: ActionDelete}
	}
	return s.repo.Delete(ctx, id)
}

// ListHistory returns every version of a note, oldest first, with client and
// provider display names resolved.
func (s *Service) ListHistory(ctx context.Context, actor Actor, noteID uuid.UUID) ([]*HistoryView, error) {
	n, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanPerform(ctx, actor, ActionRead, n) {
		return nil, &AuthorizationError{Action: ActionRead}
	}
	entries, err := s.repo.ListHistory(ctx, noteID)
	if err != nil {
		return nil, err
	}
	clientName, providerName := s.displayNames(ctx, n)
	views := make([]*HistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, &HistoryView{
			HistoryEntry: *e,
			NoteType:     n.NoteType,
			ClientName:   clientName,
			ProviderName: providerName,
		})
	}
	return views, nil
}

// GetHistorySnapshot returns one specific version of a note.
func (s *Service) GetHistorySnapshot(ctx context.Context, actor Actor, noteID uuid.UUID, version int) (*HistoryView, error) {
	n, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanPerform(ctx, actor, ActionRead, n) {
		return nil, &AuthorizationError{Action: ActionRead}
	}
	e, err := s.repo.GetHistoryVersion(ctx, noteID, version)
	if err != nil {
		return nil, err
	}
	clientName, providerName := s.displayNames(ctx, n)
	return &HistoryView{
		HistoryEntry: *e,
		NoteType:     n.NoteType,
		ClientName:   clientName,
		ProviderName: providerName,
	}, nil
}

func (s *Service) displayNames(ctx context.Context, n *Note) (string, string) {
	if s.dir == nil {
		return "", ""
	}
	clientName, _ := s.dir.ClientName(ctx, n.ClientID)
	providerName, _ := s.dir.ProviderName(ctx, n.ProviderID)
	return clientName, providerName
}

// persist writes the note at version+1 together with its history snapshot,
// in one transaction, conditional on the version that was read. prev is the
// note's state before the mutation, used to diff the history flags.
func (s *Service) persist(ctx context.Context, n *Note, prev *Note, updatedBy uuid.UUID) error {
	expected := n.Version
	n.Version++
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, n, expected); err != nil {
			return err
		}
		return s.repo.AppendHistory(ctx, snapshot(n, prev, updatedBy))
	})
}

func applyChanges(n *Note, ch Changes) {
	if ch.Title != nil {
		n.Title = *ch.Title
	}
	if ch.Content != nil {
		n.Content = ch.Content
	}
}
