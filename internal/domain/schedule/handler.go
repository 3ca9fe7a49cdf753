package schedule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/auth"
	"github.com/careportal/careportal/pkg/pagination"
	"github.com/careportal/careportal/pkg/schedule"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctor := api.Group("/doctor/schedule", auth.RequireRole("doctor"))
	doctor.GET("/full", h.GetFullSchedule)
	doctor.POST("/recurring", h.CreateRecurringSlot)
	doctor.PUT("/recurring/:id", h.UpdateRecurringSlot)
	doctor.DELETE("/recurring/:id", h.DeleteRecurringSlot)
	doctor.POST("/onetime", h.CreateOneTimeSlot)
	doctor.PUT("/onetime/:id", h.UpdateOneTimeSlot)
	doctor.DELETE("/onetime/:id", h.DeleteOneTimeSlot)
	doctor.POST("/break", h.CreateBreak)
	doctor.PUT("/break/:id", h.UpdateBreak)
	doctor.DELETE("/break/:id", h.DeleteBreak)
	doctor.GET("/removal-requests", h.ListOwnRemovalRequests)
	doctor.POST("/removal-request", h.CreateRemovalRequest)

	admin := api.Group("/admin/schedule", auth.RequireRole("admin"))
	admin.GET("/removal-requests", h.ListRemovalRequests)
	admin.PUT("/removal-requests/:id/review", h.ReviewRemovalRequest)
}

// serviceError maps domain failures onto HTTP statuses: conflicts to 409,
// missing rows to 404, everything else to 400.
func serviceError(err error) error {
	switch {
	case IsConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	return id, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Doctor: full schedule --

func (h *Handler) GetFullSchedule(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	full, err := h.svc.FullSchedule(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, full)
}

// -- Doctor: recurring slots --

func (h *Handler) CreateRecurringSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	var slot RecurringSlot
	if err := c.Bind(&slot); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRecurringSlot(c.Request().Context(), doctorID, &slot); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, slot.ToWire())
}

func (h *Handler) UpdateRecurringSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var slot RecurringSlot
	if err := c.Bind(&slot); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot.ID = id
	if err := h.svc.UpdateRecurringSlot(c.Request().Context(), doctorID, &slot); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, slot.ToWire())
}

func (h *Handler) DeleteRecurringSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecurringSlot(c.Request().Context(), doctorID, id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Doctor: one-time slots --

func (h *Handler) CreateOneTimeSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	var slot OneTimeSlot
	if err := c.Bind(&slot); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOneTimeSlot(c.Request().Context(), doctorID, &slot); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, slot.ToWire())
}

func (h *Handler) UpdateOneTimeSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var slot OneTimeSlot
	if err := c.Bind(&slot); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slot.ID = id
	if err := h.svc.UpdateOneTimeSlot(c.Request().Context(), doctorID, &slot); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, slot.ToWire())
}

func (h *Handler) DeleteOneTimeSlot(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteOneTimeSlot(c.Request().Context(), doctorID, id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Doctor: breaks --

func (h *Handler) CreateBreak(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	var b Break
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBreak(c.Request().Context(), doctorID, &b); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, b.ToWire())
}

func (h *Handler) UpdateBreak(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var b Break
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBreak(c.Request().Context(), doctorID, &b); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, b.ToWire())
}

func (h *Handler) DeleteBreak(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBreak(c.Request().Context(), doctorID, id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Doctor: removal requests --

func (h *Handler) ListOwnRemovalRequests(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	requests, err := h.svc.ListRemovalRequestsByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	wire := make([]schedule.RemovalRequest, 0, len(requests))
	for _, req := range requests {
		wire = append(wire, req.ToWire())
	}
	return c.JSON(http.StatusOK, wire)
}

func (h *Handler) CreateRemovalRequest(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	var req RemovalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRemovalRequest(c.Request().Context(), doctorID, &req); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, req.ToWire())
}

// -- Admin: review --

func (h *Handler) ListRemovalRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	status := schedule.RequestStatus(c.QueryParam("status"))
	items, total, err := h.svc.ListRemovalRequests(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// reviewRequest is the body of PUT /admin/schedule/removal-requests/{id}/review.
type reviewRequest struct {
	Approve   bool    `json:"approve"`
	AdminNote *string `json:"adminNote,omitempty"`
}

func (h *Handler) ReviewRemovalRequest(c echo.Context) error {
	adminID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body reviewRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reviewed, err := h.svc.ReviewRemovalRequest(c.Request().Context(), adminID, id, body.Approve, body.AdminNote)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, reviewed.ToWire())
}
