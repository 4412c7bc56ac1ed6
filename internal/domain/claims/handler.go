package claims

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memberportal/planinfo/internal/platform/auth"
	"github.com/memberportal/planinfo/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	member := api.Group("/claims", auth.RequireMember())
	member.GET("", h.ListClaims)
	member.GET("/:claimNumber/eob", h.GetEOB)

	admin := api.Group("/admin/members/:memberID", auth.RequireRole("admin"))
	admin.PUT("/claims", h.PutClaims)
	admin.PUT("/claims/:claimNumber/eob", h.PutEOB)
}

// ListClaims serves GET /claims?filter=title:value&page=N&view=full|compact.
func (h *Handler) ListClaims(c echo.Context) error {
	q := ListQuery{
		Page: pagination.PageIndexFromContext(c),
		View: View(c.QueryParam("view")),
	}
	for _, raw := range c.QueryParams()["filter"] {
		f, err := ParseFilterParam(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.Filters = append(q.Filters, f)
	}
	if q.View != "" && !validViews[q.View] {
		return echo.NewHTTPError(http.StatusBadRequest, "view must be full or compact")
	}

	ctx := c.Request().Context()
	result, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetEOB(c echo.Context) error {
	ctx := c.Request().Context()
	pdf, err := h.svc.EOBPDF(ctx, auth.UserIDFromContext(ctx), c.Param("claimNumber"))
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "eob not found")
	case errors.Is(err, ErrInvalidPayload):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "eob content is corrupt")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set("Content-Disposition", `inline; filename="eob-`+c.Param("claimNumber")+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) PutClaims(c echo.Context) error {
	var batch []Claim
	if err := c.Bind(&batch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.IngestClaims(c.Request().Context(), c.Param("memberID"), batch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"stored": len(batch)})
}

func (h *Handler) PutEOB(c echo.Context) error {
	var e EOB
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.MemberID = c.Param("memberID")
	e.ClaimNumber = c.Param("claimNumber")
	if err := h.svc.PutEOB(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
