package webui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
	"github.com/netopsdesk/siteportal/internal/webserver"
)

func registerReportRoutes() {
	allRoles := webserver.RequireRoles(domain.RoleAdmin, domain.RoleNetworkTeam, domain.RoleNocTeam)
	editorRoles := webserver.RequireRoles(domain.RoleAdmin, domain.RoleNocTeam)

	webserver.GET("/daily_problem_report", dailyProblemReport, allRoles)
	webserver.POST("/daily_problem_report", createReport, allRoles)
	webserver.GET("/daily_problem_report/edit/:id", editReportPage, editorRoles)
	webserver.POST("/daily_problem_report/edit/:id", editReport, editorRoles)
	webserver.POST("/daily_problem_report/delete/:id", deleteReport, editorRoles)
	webserver.GET("/daily_problem_report/clone/:id", cloneReportPage, editorRoles)
	webserver.POST("/daily_problem_report/clone/:id", cloneReport, editorRoles)
}

// reportForm carries date fields as raw strings so parse failures surface as
// field errors instead of bind errors.
type reportForm struct {
	SiteId       int64  `form:"site_location" validate:"required"`
	TicketId     string `form:"ticket_id" validate:"required"`
	Status       string `form:"status" validate:"required,oneof=UP DOWN"`
	Reason       string `form:"reason"`
	LastUpdate   string `form:"last_update"`
	IssueDate    string `form:"issue_date" validate:"required"`
	LastFollowUp string `form:"last_follow_up" validate:"required"`
}

func (f *reportForm) trim() {
	f.TicketId = strings.TrimSpace(f.TicketId)
}

// dates validates and parses both date fields, adding failures to errs.
func (f *reportForm) dates(errs map[string]string) (issue, followUp time.Time) {
	var ok bool
	if f.IssueDate != "" {
		if issue, ok = parseDateField(f.IssueDate); !ok {
			errs["issue_date"] = "Not a valid date value."
		}
	}
	if f.LastFollowUp != "" {
		if followUp, ok = parseDateField(f.LastFollowUp); !ok {
			errs["last_follow_up"] = "Not a valid date value."
		}
	}
	return issue, followUp
}

// checkSiteChoice rejects site ids that do not resolve to a stored site.
func checkSiteChoice(c echo.Context, siteID int64, errs map[string]string) error {
	if siteID <= 0 || errs["site_location"] != "" {
		return nil
	}
	_, err := webserver.GetRepos(c).Sites.GetByID(c.Request().Context(), siteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errs["site_location"] = "Not a valid choice."
		return nil
	}
	return err
}

func reportFormFrom(r *domain.ProblemReport) *reportForm {
	return &reportForm{
		SiteId:       r.SiteId,
		TicketId:     r.TicketId,
		Status:       r.Status,
		Reason:       r.Reason,
		LastUpdate:   r.LastUpdate,
		IssueDate:    r.IssueDate.Format("2006-01-02"),
		LastFollowUp: r.LastFollowUp.Format("2006-01-02"),
	}
}

func loadReport(c echo.Context) (*domain.ProblemReport, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	report, err := webserver.GetRepos(c).Reports.GetByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Report not found")
	} else if err != nil {
		return nil, err
	}
	return report, nil
}

// renderReportPage shows the daily report page: the entry form plus, outside
// edit/clone mode, the full report listing.
func renderReportPage(c echo.Context, form *reportForm, errs map[string]string, action string, edit bool) error {
	repos := webserver.GetRepos(c)
	ctx := c.Request().Context()

	sites, err := repos.Sites.ListByLocation(ctx)
	if err != nil {
		zap.L().Error("site list failed", zap.Error(err))
		return err
	}

	data := echo.Map{
		"Form":     form,
		"Errors":   errs,
		"Action":   action,
		"Edit":     edit,
		"Sites":    sites,
		"Statuses": []string{domain.ReportStatusUp, domain.ReportStatusDown},
	}
	if errs == nil {
		data["Errors"] = map[string]string{}
	}

	reports, err := repos.Reports.ListDetailed(ctx)
	if err != nil {
		zap.L().Error("report list failed", zap.Error(err))
		return err
	}
	data["Reports"] = reports

	return render(c, "daily_report.html", data)
}

func dailyProblemReport(c echo.Context) error {
	form := &reportForm{Status: domain.ReportStatusUp}

	// Preselect the site when a valid site_id shortcut parameter is present.
	if siteID := cast.ToInt64(c.QueryParam("site_id")); siteID > 0 {
		_, err := webserver.GetRepos(c).Sites.GetByID(c.Request().Context(), siteID)
		if err == nil {
			form.SiteId = siteID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return renderReportPage(c, form, nil, "/daily_problem_report", false)
}

func createReport(c echo.Context) error {
	form := new(reportForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse report form")
	}
	form.trim()

	errs := map[string]string{}
	if err := c.Validate(form); err != nil {
		errs = fieldErrors(err)
	}
	issue, followUp := form.dates(errs)
	if err := checkSiteChoice(c, form.SiteId, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return renderReportPage(c, form, errs, "/daily_problem_report", false)
	}

	report := &domain.ProblemReport{
		SiteId:       form.SiteId,
		TicketId:     form.TicketId,
		Status:       form.Status,
		Reason:       form.Reason,
		LastUpdate:   form.LastUpdate,
		IssueDate:    issue,
		LastFollowUp: followUp,
	}
	if err := webserver.GetRepos(c).Reports.Create(c.Request().Context(), report); err != nil {
		zap.L().Error("report create failed", zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the report.")
		return renderReportPage(c, form, nil, "/daily_problem_report", false)
	}
	return redirectWithFlash(c, "success", "Problem report added", "/daily_problem_report")
}

func editReportPage(c echo.Context) error {
	report, err := loadReport(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/daily_problem_report/edit/%d", report.ID)
	return renderReportPage(c, reportFormFrom(report), nil, action, true)
}

func editReport(c echo.Context) error {
	report, err := loadReport(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/daily_problem_report/edit/%d", report.ID)

	form := new(reportForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse report form")
	}
	form.trim()

	errs := map[string]string{}
	if err := c.Validate(form); err != nil {
		errs = fieldErrors(err)
	}
	issue, followUp := form.dates(errs)
	if err := checkSiteChoice(c, form.SiteId, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return renderReportPage(c, form, errs, action, true)
	}

	report.SiteId = form.SiteId
	report.TicketId = form.TicketId
	report.Status = form.Status
	report.Reason = form.Reason
	report.LastUpdate = form.LastUpdate
	report.IssueDate = issue
	report.LastFollowUp = followUp

	if err := webserver.GetRepos(c).Reports.Update(c.Request().Context(), report); err != nil {
		zap.L().Error("report update failed", zap.Int64("id", report.ID), zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the report.")
		return renderReportPage(c, form, nil, action, true)
	}
	return redirectWithFlash(c, "success", "Problem report updated", "/daily_problem_report")
}

func deleteReport(c echo.Context) error {
	report, err := loadReport(c)
	if err != nil {
		return err
	}
	if err := webserver.GetRepos(c).Reports.Delete(c.Request().Context(), report.ID); err != nil {
		zap.L().Error("report delete failed", zap.Int64("id", report.ID), zap.Error(err))
		return redirectWithFlash(c, "danger", "Failed to delete the report.", "/daily_problem_report")
	}
	return redirectWithFlash(c, "info", "Report deleted", "/daily_problem_report")
}

func cloneReportPage(c echo.Context) error {
	report, err := loadReport(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/daily_problem_report/clone/%d", report.ID)
	return renderReportPage(c, reportFormFrom(report), nil, action, false)
}

func cloneReport(c echo.Context) error {
	source, err := loadReport(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/daily_problem_report/clone/%d", source.ID)

	form := new(reportForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse report form")
	}
	form.trim()

	errs := map[string]string{}
	if err := c.Validate(form); err != nil {
		errs = fieldErrors(err)
	}
	issue, followUp := form.dates(errs)
	if err := checkSiteChoice(c, form.SiteId, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return renderReportPage(c, form, errs, action, false)
	}

	report := &domain.ProblemReport{
		SiteId:       form.SiteId,
		TicketId:     form.TicketId,
		Status:       form.Status,
		Reason:       form.Reason,
		LastUpdate:   form.LastUpdate,
		IssueDate:    issue,
		LastFollowUp: followUp,
	}
	if err := webserver.GetRepos(c).Reports.Create(c.Request().Context(), report); err != nil {
		zap.L().Error("report clone failed", zap.Int64("source_id", source.ID), zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the report.")
		return renderReportPage(c, form, nil, action, false)
	}
	return redirectWithFlash(c, "success", "Problem report cloned successfully as new report.", "/daily_problem_report")
}
