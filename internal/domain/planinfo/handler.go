package planinfo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/domain/coverage"
	"github.com/memberportal/planinfo/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/plan-information", h.GetPage, auth.RequireMember())
}

// GetPage serves GET /plan-information. A member without a resolvable plan
// gets 404, which the portal renders as its technical issue state.
func (h *Handler) GetPage(c echo.Context) error {
	ctx := c.Request().Context()
	page, err := h.svc.Page(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx))
	if errors.Is(err, coverage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "plan information is not available")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, page)
}
