package notes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/practicewell/practicewell/internal/platform/auth"
	"github.com/practicewell/practicewell/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "supervisor", "clinician", "biller", "front_office"))
	readGroup.GET("/notes", h.List)
	readGroup.GET("/notes/:id", h.Get)
	readGroup.GET("/notes/:id/history", h.ListHistory)
	readGroup.GET("/notes/:id/history/:versionId", h.GetHistoryVersion)

	writeGroup := api.Group("", auth.RequireRole("admin", "supervisor", "clinician"))
	writeGroup.POST("/notes", h.Create)
	writeGroup.PATCH("/notes/:id", h.Update)
	writeGroup.PATCH("/notes/:id/submit", h.Submit)
	writeGroup.PATCH("/notes/:id/co-sign", h.CoSign)
	writeGroup.PATCH("/notes/:id/lock", h.Lock)
	writeGroup.PATCH("/notes/:id/unlock", h.Unlock)
	writeGroup.DELETE("/notes/:id", h.Delete)
}

func actorFromContext(c echo.Context) Actor {
	ctx := c.Request().Context()
	id, _ := uuid.Parse(auth.UserIDFromContext(ctx))
	return Actor{
		ID:    id,
		Name:  auth.UserNameFromContext(ctx),
		Roles: auth.RolesFromContext(ctx),
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500.
func writeError(c echo.Context, err error) error {
	var (
		notFound     *NotFoundError
		invalidState *InvalidStateError
		validationE  *ValidationError
		authz        *AuthorizationError
		conflict     *ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]interface{}{"error": notFound.Error()})
	case errors.As(err, &invalidState):
		return c.JSON(http.StatusConflict, map[string]interface{}{"error": invalidState.Error()})
	case errors.As(err, &validationE):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationE.Fields,
		})
	case errors.As(err, &authz):
		return c.JSON(http.StatusForbidden, map[string]interface{}{"error": authz.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, map[string]interface{}{"error": conflict.Error()})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

type createRequest struct {
	ClientID   uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	NoteType   NoteType  `json:"note_type"`
	Title      string    `json:"title"`
	Content    Content   `json:"content"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Create(c.Request().Context(), actorFromContext(c), CreateInput{
		ClientID:   req.ClientID,
		ProviderID: req.ProviderID,
		NoteType:   req.NoteType,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.Get(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) List(c echo.Context) error {
	clientID, err := uuid.Parse(c.QueryParam("client_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "client_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByClient(c.Request().Context(), clientID, pg.Limit, pg.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type updateRequest struct {
	Title     *string `json:"title"`
	Content   Content `json:"content"`
	Sign      bool    `json:"sign"`
	Signature string  `json:"signature"`
}

// Update saves draft edits, or signs when the sign flag is set. Signing may
// carry edits, which land in the same version bump as the signature.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := actorFromContext(c)
	ch := Changes{Title: req.Title, Content: req.Content}

	var n *Note
	if req.Sign {
		n, err = h.svc.Sign(c.Request().Context(), actor, id, ch, req.Signature)
	} else {
		n, err = h.svc.SaveDraft(c.Request().Context(), actor, id, ch)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Submit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.Submit(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

type coSignRequest struct {
	Signature string `json:"signature"`
}

func (h *Handler) CoSign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req coSignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.CoSign(c.Request().Context(), actorFromContext(c), id, req.Signature)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Lock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.Lock(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Unlock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.Unlock(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), actorFromContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	views, err := h.svc.ListHistory(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) GetHistoryVersion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	version, err := parseVersion(c.Param("versionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version")
	}
	view, err := h.svc.GetHistorySnapshot(c.Request().Context(), actorFromContext(c), id, version)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func parseVersion(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, errors.New("version out of range")
	}
	return v, nil
}
