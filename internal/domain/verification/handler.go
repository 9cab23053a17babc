package verification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chartguard/chartguard/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "scribe"))
	g.POST("/patients/:id/insights/validate", h.ValidateInsights)
	g.POST("/patients/:id/insights/check", h.CheckInsight)
	g.POST("/patients/:id/insights/summary", h.SummarizeInsights)
	g.POST("/citations/extract", h.Extract)
}

type validateRequest struct {
	Insights []string `json:"insights"`
	Mode     string   `json:"mode"`
}

type checkRequest struct {
	Insight string `json:"insight"`
}

type extractRequest struct {
	Text string `json:"text"`
}

func (h *Handler) ValidateInsights(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	insights, err := h.svc.ValidateForPatient(c.Request().Context(), patientID, req.Insights, req.Mode)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"insights": insights})
}

func (h *Handler) CheckInsight(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.ValidateInsight(c.Request().Context(), patientID, req.Insight)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) SummarizeInsights(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sum, err := h.svc.SummaryForPatient(c.Request().Context(), patientID, req.Insights)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

// Extract is snapshot-free: it only reports what the extractor sees in the
// text, for debugging generation output.
func (h *Handler) Extract(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	citations := ExtractCitations(req.Text)
	if citations == nil {
		citations = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"citations": citations})
}
