package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/practicewell/practicewell/internal/platform/auth"
)

func newHandlerContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, testActor.ID.String())
	ctx = context.WithValue(ctx, auth.UserNameKey, testActor.Name)
	ctx = context.WithValue(ctx, auth.UserRolesKey, testActor.Roles)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newTestHandler(gate AuthorizationGate) (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(newTestService(repo, gate)), repo
}

func decodeNote(t *testing.T, rec *httptest.ResponseRecorder) *Note {
	t.Helper()
	var n Note
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &n
}

func TestHandlerCreate(t *testing.T) {
	h, repo := newTestHandler(allowGate{})
	body := `{"client_id":"` + testClient.String() + `","note_type":"progress_note","title":"Session 1","content":{"mood":"calm"}}`
	c, rec := newHandlerContext(t, http.MethodPost, "/api/v1/notes", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	n := decodeNote(t, rec)
	if n.Status != StatusDraft || n.Version != 1 {
		t.Errorf("unexpected note: %+v", n)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected one stored note, got %d", len(repo.items))
	}
}

func TestHandlerCreate_UnknownType(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	body := `{"client_id":"` + testClient.String() + `","note_type":"soap_note"}`
	c, rec := newHandlerContext(t, http.MethodPost, "/api/v1/notes", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	c, rec := newHandlerContext(t, http.MethodGet, "/api/v1/notes/x", "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerGet_InvalidID(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	c, _ := newHandlerContext(t, http.MethodGet, "/api/v1/notes/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func seedDraft(t *testing.T, h *Handler, content Content) *Note {
	t.Helper()
	n, err := h.svc.Create(context.Background(), testActor, CreateInput{
		ClientID: testClient,
		NoteType: TypeProgressNote,
		Title:    "Session 1",
		Content:  content,
	})
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	return n
}

func TestHandlerUpdate_SignWithChanges(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	n := seedDraft(t, h, Content{"mood": "calm"})

	full, _ := json.Marshal(completeProgressNote())
	body := `{"content":` + string(full) + `,"sign":true,"signature":"Dr. Smith"}`
	c, rec := newHandlerContext(t, http.MethodPatch, "/api/v1/notes/x", body)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeNote(t, rec)
	if got.Status != StatusSigned || got.Version != 2 {
		t.Errorf("unexpected note: status=%s version=%d", got.Status, got.Version)
	}
	if got.SignedBy == nil || *got.SignedBy != "Dr. Smith" {
		t.Errorf("unexpected signedBy: %v", got.SignedBy)
	}
}

func TestHandlerSubmit_Incomplete(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	n := seedDraft(t, h, Content{"mood": "calm"})

	c, rec := newHandlerContext(t, http.MethodPatch, "/api/v1/notes/x/submit", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.Submit(c); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Fields []FieldError `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Fields) < 2 {
		t.Errorf("expected full missing list in response, got %v", resp.Fields)
	}
}

func TestHandlerCoSign_SecondAttempt(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	n := seedDraft(t, h, completeProgressNote())
	if _, err := h.svc.Sign(context.Background(), testActor, n.ID, Changes{}, "Dr. Smith"); err != nil {
		t.Fatalf("sign: %v", err)
	}
	supervisor := Actor{ID: uuid.New(), Roles: []string{"supervisor"}}
	if _, err := h.svc.CoSign(context.Background(), supervisor, n.ID, "Dr. Jones"); err != nil {
		t.Fatalf("co-sign: %v", err)
	}

	c, rec := newHandlerContext(t, http.MethodPatch, "/api/v1/notes/x/co-sign", `{"signature":"Dr. Jones"}`)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.CoSign(c); err != nil {
		t.Fatalf("co-sign handler: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	h, repo := newTestHandler(allowGate{})
	n := seedDraft(t, h, Content{})

	c, rec := newHandlerContext(t, http.MethodDelete, "/api/v1/notes/x", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if len(repo.items) != 0 {
		t.Error("expected note to be deleted")
	}
}

func TestHandlerUnlock_Forbidden(t *testing.T) {
	h, _ := newTestHandler(denyGate{denied: ActionUnlock})
	n := seedDraft(t, h, completeProgressNote())
	if _, err := h.svc.Sign(context.Background(), testActor, n.ID, Changes{}, "Dr. Smith"); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := h.svc.Lock(context.Background(), testActor, n.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	c, rec := newHandlerContext(t, http.MethodPatch, "/api/v1/notes/x/unlock", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.Unlock(c); err != nil {
		t.Fatalf("unlock handler: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestHandlerListHistory(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	n := seedDraft(t, h, Content{"mood": "calm"})
	if _, err := h.svc.SaveDraft(context.Background(), testActor, n.ID, Changes{Content: Content{"mood": "anxious"}}); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	c, rec := newHandlerContext(t, http.MethodGet, "/api/v1/notes/x/history", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())
	if err := h.ListHistory(c); err != nil {
		t.Fatalf("list history: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []HistoryView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(views))
	}
	if views[0].ClientName != "Jane Doe" {
		t.Errorf("expected enriched client name, got %q", views[0].ClientName)
	}
}

func TestHandlerGetHistoryVersion(t *testing.T) {
	h, _ := newTestHandler(allowGate{})
	n := seedDraft(t, h, Content{"mood": "calm"})

	c, rec := newHandlerContext(t, http.MethodGet, "/api/v1/notes/x/history/1", "")
	c.SetParamNames("id", "versionId")
	c.SetParamValues(n.ID.String(), "1")
	if err := h.GetHistoryVersion(c); err != nil {
		t.Fatalf("get history version: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newHandlerContext(t, http.MethodGet, "/api/v1/notes/x/history/9", "")
	c.SetParamNames("id", "versionId")
	c.SetParamValues(n.ID.String(), "9")
	if err := h.GetHistoryVersion(c); err != nil {
		t.Fatalf("get history version: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
