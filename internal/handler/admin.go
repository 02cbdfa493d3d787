package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"purchase-desk/internal/config"
	"purchase-desk/internal/model"
	"purchase-desk/internal/repository"
)

// AdminHandler serves the review screens: filtered application listing,
// status updates, the user database and the archive. Role middleware
// guarantees every caller is an admin.
type AdminHandler struct {
	Cfg   config.Config
	Apps  *repository.ApplicationRepo
	Users *repository.UserRepo
}

func NewAdminHandler(cfg config.Config, apps *repository.ApplicationRepo, users *repository.UserRepo) *AdminHandler {
	if apps == nil || users == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Apps: apps, Users: users}
}

// Statuses handles GET /v1/admin/statuses: the full vocabulary in
// presentation order plus the filter list the UI renders.
func (h *AdminHandler) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"statuses": model.AllStatuses(),
		"filters":  model.FilterableStatuses(),
	})
}

// List handles GET /v1/admin/applications?status=. Without a filter (or
// with the pseudo-value) it returns every active application; with a
// concrete status only that slice of the board.
func (h *AdminHandler) List(c echo.Context) error {
	filter := c.QueryParam("status")
	if filter == "" {
		filter = model.FilterAll
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	apps, err := h.Apps.ListForAdmin(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type adminView struct {
		applicationView
		Username string `json:"username"`
	}
	out := make([]adminView, len(apps))
	for i, a := range apps {
		out[i] = adminView{applicationView: toApplicationView(a.Application), Username: a.Username}
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out, "filter": filter})
}

type updateReq struct {
	Status           string `json:"status"`
	ManagerComment   string `json:"manager_comment"`
	ExpectedDelivery string `json:"expected_delivery"` // yyyy-mm-dd, empty clears
}

// Update handles POST /v1/admin/applications/:id. It overwrites status,
// comment and expected delivery; last writer wins. Values outside the
// vocabulary are rejected before the store is touched.
func (h *AdminHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var expected *time.Time
	if req.ExpectedDelivery != "" {
		t, err := time.Parse(dateInputLayout, req.ExpectedDelivery)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid expected_delivery"})
		}
		expected = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	affected, err := h.Apps.Update(ctx, id, model.Status(req.Status), req.ManagerComment, expected)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if affected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	}

	actorID, _ := getUserID(c)
	// Owner id is not loaded here; the audit log keys on application_id.
	publishStatusChange(c, id, 0, actorID, model.Status(req.Status), req.ManagerComment)

	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// ListUsers handles GET /v1/admin/users. Password hashes never leave
// the repository, so the view is just id, username, first name and role.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type userView struct {
		ID        uint64 `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name,omitempty"`
		Role      string `json:"role"`
	}
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = userView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, Role: u.Role}
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Archive handles GET /v1/admin/archive: received and rejected
// applications with their derived total cost.
func (h *AdminHandler) Archive(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	apps, err := h.Apps.ListArchive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type archiveView struct {
		applicationView
		Username  string  `json:"username"`
		TotalCost float64 `json:"total_cost"`
	}
	out := make([]archiveView, len(apps))
	for i, a := range apps {
		out[i] = archiveView{
			applicationView: toApplicationView(a.Application),
			Username:        a.Username,
			TotalCost:       a.TotalCost,
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}
