package handler

import (
	"net/http"

	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	analyticsService service.AnalyticsService
}

func NewDashboardHandler(dashboardService service.DashboardService, analyticsService service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		analyticsService: analyticsService,
	}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/api/dashboard", auth, h.GetDashboard)
	router.GET("/api/analytics", auth, h.GetAnalytics)
}

// GetDashboard returns the user's cached dashboard summary
// @Summary      Dashboard summary
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetAnalytics returns the user's cached analytics report
// @Summary      Analytics report
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.AnalyticsReport}
// @Failure      500  {object}  response.Response
// @Router       /api/analytics [get]
func (h *DashboardHandler) GetAnalytics(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	report, err := h.analyticsService.GetReport(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
