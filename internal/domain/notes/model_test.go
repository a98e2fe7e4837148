package notes

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		tr   Transition
		want bool
	}{
		{StatusDraft, TransitionSaveDraft, true},
		{StatusDraft, TransitionSubmit, true},
		{StatusDraft, TransitionSign, true},
		{StatusDraft, TransitionDelete, true},
		{StatusDraft, TransitionCoSign, false},
		{StatusDraft, TransitionLock, false},
		{StatusDraft, TransitionUnlock, false},
		{StatusSubmitted, TransitionSign, true},
		{StatusSubmitted, TransitionSaveDraft, false},
		{StatusSubmitted, TransitionSubmit, false},
		{StatusSubmitted, TransitionDelete, false},
		{StatusSigned, TransitionCoSign, true},
		{StatusSigned, TransitionLock, true},
		{StatusSigned, TransitionSaveDraft, false},
		{StatusSigned, TransitionSign, false},
		{StatusSigned, TransitionDelete, false},
		{StatusSigned, TransitionUnlock, false},
		{StatusLocked, TransitionUnlock, true},
		{StatusLocked, TransitionLock, false},
		{StatusLocked, TransitionSaveDraft, false},
		{StatusLocked, TransitionSign, false},
		{StatusLocked, TransitionDelete, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.tr); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.tr, got, tt.want)
		}
	}
}

func TestValidNoteType(t *testing.T) {
	for _, nt := range []NoteType{TypeIntake, TypeProgressNote, TypeTreatmentPlan,
		TypeContactNote, TypeConsultation, TypeCancellation, TypeMiscellaneous} {
		if !ValidNoteType(nt) {
			t.Errorf("expected %s to be valid", nt)
		}
	}
	if ValidNoteType("soap_note") {
		t.Error("expected soap_note to be invalid")
	}
	if ValidNoteType("") {
		t.Error("expected empty type to be invalid")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSubmitted, StatusSigned, StatusLocked} {
		if !ValidStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if ValidStatus("archived") {
		t.Error("expected archived to be invalid")
	}
}

func TestSnapshotCopiesContent(t *testing.T) {
	n := &Note{Title: "t", Content: Content{"mood": "calm"}, Status: StatusDraft, Version: 1}
	e := snapshot(n, nil, uuid.UUID{1})
	n.Content["mood"] = "anxious"
	if e.Content["mood"] != "calm" {
		t.Error("history snapshot should not alias the live content map")
	}
	if e.Version != 1 || e.Status != StatusDraft || e.Title != "t" {
		t.Errorf("unexpected snapshot: %+v", e)
	}
	if !e.UpdatedTitle || !e.UpdatedContent || !e.UpdatedStatus {
		t.Error("creation snapshot should mark every field as updated")
	}
}

func TestSnapshotDiffFlags(t *testing.T) {
	prev := &Note{Title: "t", Content: Content{"mood": "calm"}, Status: StatusDraft, Version: 1}

	edited := &Note{Title: "t", Content: Content{"mood": "anxious"}, Status: StatusDraft, Version: 2}
	e := snapshot(edited, prev, uuid.UUID{1})
	if e.UpdatedTitle || !e.UpdatedContent || e.UpdatedStatus {
		t.Errorf("content edit should flag only content: %+v", e)
	}

	submitted := &Note{Title: "t", Content: Content{"mood": "calm"}, Status: StatusSubmitted, Version: 2}
	e = snapshot(submitted, prev, uuid.UUID{1})
	if e.UpdatedTitle || e.UpdatedContent || !e.UpdatedStatus {
		t.Errorf("status change should flag only status: %+v", e)
	}

	retitled := &Note{Title: "renamed", Content: Content{"mood": "calm"}, Status: StatusDraft, Version: 2}
	e = snapshot(retitled, prev, uuid.UUID{1})
	if !e.UpdatedTitle || e.UpdatedContent || e.UpdatedStatus {
		t.Errorf("title change should flag only title: %+v", e)
	}
}
