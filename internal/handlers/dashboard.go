package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-task-api/internal/dto"
	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/pdf"
	"github.com/yukikurage/team-task-api/internal/services"
)

// DashboardHandler serves the per-user reporting endpoints.
type DashboardHandler struct {
	dashboardService *services.DashboardService
	pdfGenerator     pdf.Generator
}

func NewDashboardHandler(dashboardService *services.DashboardService, pdfGenerator pdf.Generator) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		pdfGenerator:     pdfGenerator,
	}
}

// TaskCompletion reports completed and total tasks across everything the user can see.
//
// @Summary      Task completion
// @Tags         Dashboard
// @Produce      json
// @Success      200  {array}   dto.MetricDTO
// @Failure      401  {object}  apierrors.APIError
// @Router       /dashboard/task-completion [get]
func (h *DashboardHandler) TaskCompletion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	completion, err := h.dashboardService.TaskCompletion(userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskCompletionDTO(completion))
}

// TopCategory returns the categories of the user's created tasks, most used first.
func (h *DashboardHandler) TopCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counts, err := h.dashboardService.TopCategories(userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryCountDTOs(counts))
}

// WeeklyReport lists the tasks created in the week containing ?date= (default today).
func (h *DashboardHandler) WeeklyReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ref, ok := reportDate(c)
	if !ok {
		return
	}

	user, report, err := h.dashboardService.WeeklyReport(userID, ref)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWeeklyReportDTO(user.ID, report))
}

// WeeklyReportPDF renders the weekly report as a PDF attachment.
//
// @Summary      Weekly report PDF
// @Tags         Dashboard
// @Produce      application/pdf
// @Param        date  query  string  false  "Any day of the week (YYYY-MM-DD)"
// @Success      200
// @Failure      400  {object}  apierrors.APIError
// @Failure      401  {object}  apierrors.APIError
// @Router       /dashboard/weekly-report/pdf [get]
func (h *DashboardHandler) WeeklyReportPDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ref, ok := reportDate(c)
	if !ok {
		return
	}

	user, report, err := h.dashboardService.WeeklyReport(userID, ref)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	var buf bytes.Buffer
	err = h.pdfGenerator.WeeklyReport(&buf, pdf.WeeklyReportData{
		UserName: user.Name,
		Username: user.Username,
		Report:   report,
	})
	if err != nil {
		internalError(c, "[dashboard][pdf]", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=weekly-report-%s.pdf", report.Week))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ProjectCompletion reports completion per project of the user's teams.
func (h *DashboardHandler) ProjectCompletion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.dashboardService.ProjectCompletion(userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectCompletionDTOs(groups))
}

// TeamProductivity reports completion per team the user belongs to.
func (h *DashboardHandler) TeamProductivity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.dashboardService.TeamProductivity(userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamProductivityDTOs(groups))
}

// Statistics recomputes and returns the user's stored dashboard counters.
func (h *DashboardHandler) Statistics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Statistics(userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatisticsDTO(*stats))
}

// reportDate reads the optional ?date= parameter. A zero time means today.
func reportDate(c *gin.Context) (time.Time, bool) {
	value := c.Query("date")
	if value == "" {
		return time.Time{}, true
	}
	ref, err := time.Parse("2006-01-02", value)
	if err != nil {
		apierrors.InvalidFormat(c, "date must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return ref, true
}

func respondDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		internalError(c, "[dashboard]", err)
	}
}
