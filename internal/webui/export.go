package webui

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/netopsdesk/siteportal/internal/export"
	"github.com/netopsdesk/siteportal/internal/webserver"
)

func registerExportRoutes() {
	webserver.GET("/export_sites", exportSites, webserver.RequireAuth())
	webserver.GET("/export_reports", exportReports, webserver.RequireAuth())
}

func sendWorkbook(c echo.Context, filename string, write func(w *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		zap.L().Error("workbook serialization failed", zap.String("filename", filename), zap.Error(err))
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func exportSites(c echo.Context) error {
	sites, err := webserver.GetRepos(c).Sites.List(c.Request().Context())
	if err != nil {
		zap.L().Error("site export query failed", zap.Error(err))
		return err
	}
	return sendWorkbook(c, export.SiteFilename, func(w *bytes.Buffer) error {
		return export.SitesWorkbook(sites).Write(w)
	})
}

func exportReports(c echo.Context) error {
	reports, err := webserver.GetRepos(c).Reports.ListDetailed(c.Request().Context())
	if err != nil {
		zap.L().Error("report export query failed", zap.Error(err))
		return err
	}
	return sendWorkbook(c, export.ReportFilename, func(w *bytes.Buffer) error {
		return export.ReportsWorkbook(reports).Write(w)
	})
}
