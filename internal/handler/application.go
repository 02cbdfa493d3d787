package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"purchase-desk/internal/config"
	"purchase-desk/internal/model"
	"purchase-desk/internal/queue"
	"purchase-desk/internal/repository"
	queue_publisher "purchase-desk/internal/service"
)

// dateInputLayout is the wire format for date fields in request bodies,
// matching HTML date inputs.
const dateInputLayout = "2006-01-02"

// ApplicationHandler serves the endpoints a regular user works with:
// listing their active applications, submitting, cancelling and cloning.
// JWT and role middleware run before every method.
type ApplicationHandler struct {
	Cfg  config.Config
	Apps *repository.ApplicationRepo
}

func NewApplicationHandler(cfg config.Config, apps *repository.ApplicationRepo) *ApplicationHandler {
	if apps == nil {
		panic("nil repository passed to NewApplicationHandler")
	}
	return &ApplicationHandler{Cfg: cfg, Apps: apps}
}

// getUserID extracts the authenticated user id stored by the JWT
// middleware. JWT numeric claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// List handles GET /v1/applications. It returns the caller's active
// applications, newest first; archived ones never appear.
func (h *ApplicationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	apps, err := h.Apps.ListForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": toApplicationViews(apps)})
}

type createReq struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	DesiredDate string `json:"desired_date"` // yyyy-mm-dd
}

// Create handles POST /v1/applications. The new application starts at
// the pending status with creation time set by the store.
func (h *ApplicationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	price, err := strconv.ParseFloat(req.Price, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price"})
	}
	desired, err := time.Parse(dateInputLayout, req.DesiredDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desired_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	id, err := h.Apps.Create(ctx, userID, repository.CreateInput{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Price:       price,
		Link:        req.Link,
		DesiredDate: desired,
	})
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or malformed fields"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.StatusPending})
}

// Cancel handles POST /v1/applications/:id/cancel. Only the owner can
// cancel and only while the application is still active; an application
// already in the archive is left untouched.
func (h *ApplicationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	affected, err := h.Apps.Cancel(ctx, id, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if affected > 0 {
		publishStatusChange(c, id, userID, userID, model.StatusRejected, model.CancelComment)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": affected > 0})
}

// Clone handles POST /v1/applications/:id/clone. It duplicates one of
// the caller's own applications into a fresh pending request.
func (h *ApplicationHandler) Clone(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.DBQueryTimeout)
	defer cancel()

	newID, err := h.Apps.Clone(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": newID, "status": model.StatusPending})
}

// publishStatusChange emits the audit event best-effort; a broker outage
// never fails the request.
func publishStatusChange(c echo.Context, appID, ownerID, actorID uint64, status model.Status, comment string) {
	ev := queue.StatusChangedEvent{
		ApplicationID: appID,
		UserID:        ownerID,
		ActorID:       actorID,
		ActorRole:     getRole(c),
		Status:        string(status),
		Comment:       comment,
		ChangedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishStatusChanged(c.Request().Context(), ev); err != nil {
		logrus.WithError(err).Warn("status event publish failed")
	}
}

// applicationView is the JSON shape of one application row.
type applicationView struct {
	ID               uint64       `json:"id"`
	ProductName      string       `json:"product_name"`
	Quantity         int          `json:"quantity"`
	Price            float64      `json:"price"`
	Link             string       `json:"link,omitempty"`
	DesiredDate      string       `json:"desired_date"`
	CreationDate     string       `json:"creation_date"`
	ExpectedDelivery string       `json:"expected_delivery,omitempty"`
	Status           model.Status `json:"status"`
	ManagerComment   string       `json:"manager_comment,omitempty"`
}

func toApplicationView(a model.Application) applicationView {
	return applicationView{
		ID:               a.ID,
		ProductName:      a.ProductName,
		Quantity:         a.Quantity,
		Price:            a.Price,
		Link:             a.Link,
		DesiredDate:      a.DesiredDateFmt,
		CreationDate:     a.CreationDateFmt,
		ExpectedDelivery: a.ExpectedDeliveryFmt,
		Status:           a.Status,
		ManagerComment:   a.ManagerComment,
	}
}

func toApplicationViews(apps []model.Application) []applicationView {
	out := make([]applicationView, len(apps))
	for i, a := range apps {
		out[i] = toApplicationView(a)
	}
	return out
}
