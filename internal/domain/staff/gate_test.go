package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/practicewell/practicewell/internal/domain/notes"
)

func gateFixture(t *testing.T) (*RoleGate, *Staff, *Staff, *Staff) {
	t.Helper()
	repo := newMockRepo()
	svc := NewService(repo)

	supervisor := &Staff{FirstName: "Dana", LastName: "Jones", Role: RoleSupervisor, Email: "dana@example.com"}
	if err := svc.Create(context.Background(), supervisor, "correct horse battery"); err != nil {
		t.Fatalf("create supervisor: %v", err)
	}
	author := &Staff{FirstName: "Alex", LastName: "Smith", Role: RoleClinician, Email: "alex@example.com",
		SupervisorID: &supervisor.ID}
	if err := svc.Create(context.Background(), author, "correct horse battery"); err != nil {
		t.Fatalf("create author: %v", err)
	}
	other := &Staff{FirstName: "Sam", LastName: "Lee", Role: RoleClinician, Email: "sam@example.com"}
	if err := svc.Create(context.Background(), other, "correct horse battery"); err != nil {
		t.Fatalf("create other: %v", err)
	}
	return NewRoleGate(repo), author, supervisor, other
}

func actorFor(s *Staff) notes.Actor {
	return notes.Actor{ID: s.ID, Name: s.DisplayName(), Roles: []string{s.Role}}
}

func TestRoleGate_AuthorOnlyEditAndSign(t *testing.T) {
	gate, author, _, other := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}

	for _, action := range []notes.Action{notes.ActionEdit, notes.ActionSubmit, notes.ActionSign, notes.ActionDelete, notes.ActionLock} {
		if !gate.CanPerform(context.Background(), actorFor(author), action, n) {
			t.Errorf("author should be allowed to %s", action)
		}
		if gate.CanPerform(context.Background(), actorFor(other), action, n) {
			t.Errorf("non-author clinician must not %s", action)
		}
	}
}

func TestRoleGate_CoSign(t *testing.T) {
	gate, author, supervisor, other := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}

	if !gate.CanPerform(context.Background(), actorFor(supervisor), notes.ActionCoSign, n) {
		t.Error("assigned supervisor should be allowed to co-sign")
	}
	if gate.CanPerform(context.Background(), actorFor(author), notes.ActionCoSign, n) {
		t.Error("authors must not co-sign their own notes")
	}
	if gate.CanPerform(context.Background(), actorFor(other), notes.ActionCoSign, n) {
		t.Error("unrelated clinicians must not co-sign")
	}

	// A supervisor who is not the author's assigned supervisor is refused.
	otherSup := notes.Actor{ID: uuid.New(), Roles: []string{RoleSupervisor}}
	if gate.CanPerform(context.Background(), otherSup, notes.ActionCoSign, n) {
		t.Error("unassigned supervisor must not co-sign")
	}
}

func TestRoleGate_UnlockIsAdminOnly(t *testing.T) {
	gate, author, supervisor, _ := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}

	if gate.CanPerform(context.Background(), actorFor(author), notes.ActionUnlock, n) {
		t.Error("author must not unlock")
	}
	if gate.CanPerform(context.Background(), actorFor(supervisor), notes.ActionUnlock, n) {
		t.Error("supervisor must not unlock")
	}
	admin := notes.Actor{ID: uuid.New(), Roles: []string{RoleAdmin}}
	if !gate.CanPerform(context.Background(), admin, notes.ActionUnlock, n) {
		t.Error("admin should be allowed to unlock")
	}
}

func TestRoleGate_AdminBypass(t *testing.T) {
	gate, author, _, _ := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}
	admin := notes.Actor{ID: uuid.New(), Roles: []string{RoleAdmin}}
	for _, action := range []notes.Action{notes.ActionEdit, notes.ActionSign, notes.ActionCoSign, notes.ActionDelete} {
		if !gate.CanPerform(context.Background(), admin, action, n) {
			t.Errorf("admin should be allowed to %s", action)
		}
	}
}

func TestRoleGate_Read(t *testing.T) {
	gate, author, _, other := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}
	if !gate.CanPerform(context.Background(), actorFor(other), notes.ActionRead, n) {
		t.Error("any authenticated staff member may read")
	}
}

func TestRoleGate_Create(t *testing.T) {
	gate, author, supervisor, _ := gateFixture(t)
	n := &notes.Note{ProviderID: author.ID}
	if !gate.CanPerform(context.Background(), actorFor(author), notes.ActionCreate, n) {
		t.Error("clinician should be allowed to create")
	}
	if !gate.CanPerform(context.Background(), actorFor(supervisor), notes.ActionCreate, n) {
		t.Error("supervisor should be allowed to create")
	}
	biller := notes.Actor{ID: uuid.New(), Roles: []string{RoleBiller}}
	if gate.CanPerform(context.Background(), biller, notes.ActionCreate, n) {
		t.Error("biller must not create notes")
	}
}
