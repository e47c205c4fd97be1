package webui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
	"github.com/netopsdesk/siteportal/internal/webserver"
)

func registerSiteRoutes() {
	webserver.GET("/", index, webserver.RequireAuth())
	webserver.GET("/site_data", siteData, webserver.RequireAuth())
	webserver.GET("/submit_site", submitSitePage, siteEditorRoles())
	webserver.POST("/submit_site", submitSite, siteEditorRoles())
	webserver.GET("/site_data/edit/:id", editSitePage, siteEditorRoles())
	webserver.POST("/site_data/edit/:id", editSite, siteEditorRoles())
	webserver.POST("/site_data/delete/:id", deleteSite, siteEditorRoles())
	webserver.GET("/site_data/clone/:id", cloneSitePage, siteEditorRoles())
	webserver.POST("/site_data/clone/:id", cloneSite, siteEditorRoles())
	webserver.GET("/site_data/add_to_daily_report/:site_id", addToDailyReport,
		webserver.RequireRoles(domain.RoleAdmin, domain.RoleNetworkTeam, domain.RoleNocTeam))
}

func siteEditorRoles() echo.MiddlewareFunc {
	return webserver.RequireRoles(domain.RoleAdmin, domain.RoleNetworkTeam)
}

type siteForm struct {
	SiteLocation string `form:"site_location" validate:"required"`
	DeviceName   string `form:"device_name" validate:"required"`
	SdwanSiteId  string `form:"sdwan_site_id" validate:"required"`
	LanIp        string `form:"lan_ip" validate:"required,ip"`

	ElIspDetails string `form:"el_isp_details"`
	ElCapacity   string `form:"el_capacity"`
	ElL2Ip       string `form:"el_l2_ip" validate:"omitempty,ip"`

	IlevantIspDetails string `form:"ilevant_isp_details"`
	IlevantCapacity   string `form:"ilevant_capacity"`

	AtmPort string `form:"atm_port"`

	HorizonIspDetails string `form:"horizon_isp_details"`
	HorizonCapacity   string `form:"horizon_capacity"`
	HorizonL2Ip       string `form:"horizon_l2_ip" validate:"omitempty,ip"`
}

func (f *siteForm) trim() {
	f.SiteLocation = strings.TrimSpace(f.SiteLocation)
	f.DeviceName = strings.TrimSpace(f.DeviceName)
	f.SdwanSiteId = strings.TrimSpace(f.SdwanSiteId)
	f.LanIp = strings.TrimSpace(f.LanIp)
	f.ElL2Ip = strings.TrimSpace(f.ElL2Ip)
	f.HorizonL2Ip = strings.TrimSpace(f.HorizonL2Ip)
}

func (f *siteForm) apply(s *domain.Site) {
	s.SiteLocation = f.SiteLocation
	s.DeviceName = f.DeviceName
	s.SdwanSiteId = f.SdwanSiteId
	s.LanIp = f.LanIp
	s.ElIspInfoDetails = f.ElIspDetails
	s.ElIspCapacity = f.ElCapacity
	s.ElIspL2Ip = f.ElL2Ip
	s.IlevantIspInfoDetails = f.IlevantIspDetails
	s.IlevantIspCapacity = f.IlevantCapacity
	s.AtmPort = f.AtmPort
	s.HorizonIspInfoDetails = f.HorizonIspDetails
	s.HorizonIspCapacity = f.HorizonCapacity
	s.HorizonIspL2Ip = f.HorizonL2Ip
}

func siteFormFrom(s *domain.Site) *siteForm {
	return &siteForm{
		SiteLocation:      s.SiteLocation,
		DeviceName:        s.DeviceName,
		SdwanSiteId:       s.SdwanSiteId,
		LanIp:             s.LanIp,
		ElIspDetails:      s.ElIspInfoDetails,
		ElCapacity:        s.ElIspCapacity,
		ElL2Ip:            s.ElIspL2Ip,
		IlevantIspDetails: s.IlevantIspInfoDetails,
		IlevantCapacity:   s.IlevantIspCapacity,
		AtmPort:           s.AtmPort,
		HorizonIspDetails: s.HorizonIspInfoDetails,
		HorizonCapacity:   s.HorizonIspCapacity,
		HorizonL2Ip:       s.HorizonIspL2Ip,
	}
}

func index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/site_data")
}

func siteData(c echo.Context) error {
	search := c.QueryParam("search")
	sites, err := webserver.GetRepos(c).Sites.Search(c.Request().Context(), search)
	if err != nil {
		zap.L().Error("site search failed", zap.Error(err))
		return err
	}
	return render(c, "site_data.html", echo.Map{
		"Sites":  sites,
		"Search": search,
	})
}

func loadSite(c echo.Context) (*domain.Site, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	site, err := webserver.GetRepos(c).Sites.GetByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Site not found")
	} else if err != nil {
		return nil, err
	}
	return site, nil
}

func renderSiteForm(c echo.Context, form *siteForm, errs map[string]string, action string, edit bool) error {
	if errs == nil {
		errs = map[string]string{}
	}
	return render(c, "submit_site.html", echo.Map{
		"Form":   form,
		"Errors": errs,
		"Action": action,
		"Edit":   edit,
	})
}

func submitSitePage(c echo.Context) error {
	return renderSiteForm(c, &siteForm{}, nil, "/submit_site", false)
}

func submitSite(c echo.Context) error {
	form := new(siteForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse site form")
	}
	form.trim()
	if err := c.Validate(form); err != nil {
		return renderSiteForm(c, form, fieldErrors(err), "/submit_site", false)
	}

	site := new(domain.Site)
	form.apply(site)
	if err := webserver.GetRepos(c).Sites.Create(c.Request().Context(), site); err != nil {
		zap.L().Error("site create failed", zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the site.")
		return renderSiteForm(c, form, nil, "/submit_site", false)
	}
	return redirectWithFlash(c, "success", "New site added", "/site_data")
}

func editSitePage(c echo.Context) error {
	site, err := loadSite(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/site_data/edit/%d", site.ID)
	return renderSiteForm(c, siteFormFrom(site), nil, action, true)
}

func editSite(c echo.Context) error {
	site, err := loadSite(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/site_data/edit/%d", site.ID)

	form := new(siteForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse site form")
	}
	form.trim()
	if err := c.Validate(form); err != nil {
		return renderSiteForm(c, form, fieldErrors(err), action, true)
	}

	form.apply(site)
	if err := webserver.GetRepos(c).Sites.Update(c.Request().Context(), site); err != nil {
		zap.L().Error("site update failed", zap.Int64("id", site.ID), zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the site.")
		return renderSiteForm(c, form, nil, action, true)
	}
	return redirectWithFlash(c, "success", "Site updated successfully", "/site_data")
}

func deleteSite(c echo.Context) error {
	site, err := loadSite(c)
	if err != nil {
		return err
	}

	repos := webserver.GetRepos(c)
	// Reports keep outage history, so a referenced site cannot be removed.
	count, err := repos.Reports.CountBySite(c.Request().Context(), site.ID)
	if err != nil {
		zap.L().Error("report count failed", zap.Int64("site_id", site.ID), zap.Error(err))
		return err
	}
	if count > 0 {
		return redirectWithFlash(c, "danger",
			"Site has problem reports and cannot be deleted", "/site_data")
	}

	if err := repos.Sites.Delete(c.Request().Context(), site.ID); err != nil {
		zap.L().Error("site delete failed", zap.Int64("id", site.ID), zap.Error(err))
		return redirectWithFlash(c, "danger", "Failed to delete the site.", "/site_data")
	}
	return redirectWithFlash(c, "info", "Site deleted", "/site_data")
}

func cloneSitePage(c echo.Context) error {
	site, err := loadSite(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/site_data/clone/%d", site.ID)
	return renderSiteForm(c, siteFormFrom(site), nil, action, false)
}

// cloneSite persists a brand-new site from the submitted form; the source
// site is only used to pre-fill the page and stays untouched.
func cloneSite(c echo.Context) error {
	source, err := loadSite(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/site_data/clone/%d", source.ID)

	form := new(siteForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse site form")
	}
	form.trim()
	if err := c.Validate(form); err != nil {
		return renderSiteForm(c, form, fieldErrors(err), action, false)
	}

	site := new(domain.Site)
	form.apply(site)
	if err := webserver.GetRepos(c).Sites.Create(c.Request().Context(), site); err != nil {
		zap.L().Error("site clone failed", zap.Int64("source_id", source.ID), zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the site.")
		return renderSiteForm(c, form, nil, action, false)
	}
	return redirectWithFlash(c, "success", "Site cloned successfully as new site.", "/site_data")
}

func addToDailyReport(c echo.Context) error {
	id, err := parseIDParam(c, "site_id")
	if err != nil {
		return err
	}
	site, err := webserver.GetRepos(c).Sites.GetByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Site not found")
	} else if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/daily_problem_report?site_id=%d", site.ID))
}
