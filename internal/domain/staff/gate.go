package staff

import (
	"context"

	"github.com/practicewell/practicewell/internal/domain/notes"
)

// RoleGate is the role-based policy behind the note lifecycle:
// authors manage and sign their own notes, the author's supervisor
// counter-signs, and only administrators unlock.
type RoleGate struct {
	repo Repository
}

func NewRoleGate(repo Repository) *RoleGate {
	return &RoleGate{repo: repo}
}

func hasRole(actor notes.Actor, role string) bool {
	for _, r := range actor.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (g *RoleGate) CanPerform(ctx context.Context, actor notes.Actor, action notes.Action, n *notes.Note) bool {
	if hasRole(actor, RoleAdmin) {
		return true
	}
	switch action {
	case notes.ActionRead:
		return true
	case notes.ActionCreate:
		return hasRole(actor, RoleClinician) || hasRole(actor, RoleSupervisor)
	case notes.ActionEdit, notes.ActionSubmit, notes.ActionSign, notes.ActionDelete, notes.ActionLock:
		return actor.ID == n.ProviderID
	case notes.ActionCoSign:
		return g.supervises(ctx, actor, n)
	case notes.ActionUnlock:
		return false
	}
	return false
}

// supervises reports whether the actor is the note author's assigned
// supervisor.
func (g *RoleGate) supervises(ctx context.Context, actor notes.Actor, n *notes.Note) bool {
	if !hasRole(actor, RoleSupervisor) {
		return false
	}
	author, err := g.repo.GetByID(ctx, n.ProviderID)
	if err != nil || author.SupervisorID == nil {
		return false
	}
	return *author.SupervisorID == actor.ID
}
