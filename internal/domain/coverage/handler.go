package coverage

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	member := api.Group("", auth.RequireMember())
	member.GET("/plan", h.GetPlan)

	admin := api.Group("/admin", auth.RequireRole("admin"))
	admin.PUT("/members/:memberID/coverage", h.PutCoverage)
	admin.GET("/members/:memberID/coverage", h.GetCoverage)
	admin.GET("/members/:memberID/booklet-request/:lob", h.GetBookletRequest)
}

func (h *Handler) GetPlan(c echo.Context) error {
	ctx := c.Request().Context()
	plan, err := h.svc.MemberPlan(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "member plan not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) PutCoverage(c echo.Context) error {
	var mc MemberCoverage
	if err := c.Bind(&mc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	mc.MemberID = c.Param("memberID")
	if err := h.svc.IngestCoverage(c.Request().Context(), &mc); err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, mc)
}

func (h *Handler) GetCoverage(c echo.Context) error {
	mc, err := h.svc.MemberCoverage(c.Request().Context(), c.Param("memberID"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "coverage not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, mc)
}

func (h *Handler) GetBookletRequest(c echo.Context) error {
	lob, ok := ParseLineOfBusiness(c.Param("lob"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid line of business")
	}
	ctx := c.Request().Context()
	plan, err := h.svc.MemberPlan(ctx, c.Param("memberID"), c.QueryParam("plan"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "member plan not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	req, err := h.svc.BookletRequest(ctx, plan, lob)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}
