package benefits

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
	g := api.Group("/booklets", auth.RequireMember())
	g.GET("", h.ListDocuments)
	g.GET("/handbook/:yearTag", h.RedirectHandbook)
	g.GET("/:kind/pdf", h.GetPDF)
	g.POST("/refresh", h.Refresh)
}

var inlineKinds = map[Kind]bool{
	KindSBC: true, KindMedical: true, KindDental: true, KindVision: true,
}

func (h *Handler) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	docs, err := h.svc.DocumentsForMember(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *Handler) GetPDF(c echo.Context) error {
	kind := Kind(c.Param("kind"))
	if !inlineKinds[kind] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booklet kind")
	}
	ctx := c.Request().Context()
	pdf, err := h.svc.PDF(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx), kind)
	if err != nil {
		return toHTTPError(err)
	}
	c.Response().Header().Set("Content-Disposition", `inline; filename="`+string(kind)+`-booklet.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) RedirectHandbook(c echo.Context) error {
	tag := YearTag(c.Param("yearTag"))
	if tag != YearCurrent && tag != YearNext {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year tag")
	}
	ctx := c.Request().Context()
	url, err := h.svc.HandbookURL(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx), tag)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Redirect(http.StatusFound, url)
}

func (h *Handler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := h.svc.RefreshBooklets(ctx, auth.UserIDFromContext(ctx), auth.PlanIDFromContext(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, coverage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "member plan not found")
	case errors.Is(err, ErrBookletNotAvailable):
		return echo.NewHTTPError(http.StatusNotFound, "booklet not available")
	case errors.Is(err, ErrInvalidPayload):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "booklet content is corrupt")
	case errors.Is(err, ErrUpstreamDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
