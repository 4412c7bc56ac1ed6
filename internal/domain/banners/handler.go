package banners

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/platform/auth"
	"github.com/memberportal/planinfo/pkg/pagination"
)

// PlanResolver resolves a member's plan context. *coverage.Service satisfies it.
type PlanResolver interface {
	MemberPlan(ctx context.Context, memberID, planIdentifier string) (*coverage.MemberPlan, error)
}

type Handler struct {
	svc   *Service
	plans PlanResolver
}

func NewHandler(svc *Service, plans PlanResolver) *Handler {
	return &Handler{svc: svc, plans: plans}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	member := api.Group("/banners", auth.RequireMember())
	member.GET("", h.ForMember)

	admin := api.Group("/admin/banners", auth.RequireRole("admin"))
	admin.POST("", h.Create)
	admin.GET("", h.List)
	admin.DELETE("/:id", h.Delete)
}

func (h *Handler) ForMember(c echo.Context) error {
	ctx := c.Request().Context()
	plan, err := h.plans.MemberPlan(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx))
	if errors.Is(err, coverage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "plan not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	placement, err := h.svc.ForMember(ctx, plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, placement)
}

func (h *Handler) Create(c echo.Context) error {
	var b Banner
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &b); err != nil {
		if errors.Is(err, ErrInvalidRule) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "banner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
