// Package export builds the downloadable XLSX workbooks for the site
// inventory and the daily problem report log.
package export

import (
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/netopsdesk/siteportal/internal/domain"
	"github.com/netopsdesk/siteportal/internal/repository"
)

const (
	ContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SiteFilename   = "site_data.xlsx"
	ReportFilename = "daily_problem_reports.xlsx"

	siteSheet   = "Sites"
	reportSheet = "Daily Reports"
)

// Human-readable column labels, distinct from the stored field names.
var (
	SiteColumns = []string{
		"Site Name", "Device Name", "SDWAN Site ID", "LAN IP", "ATM Port",
		"EL ISP Info", "EL Capacity", "EL L2 IP",
		"Ilevant ISP Info", "ILevant Capacity",
		"Horizon ISP Info", "Horizon Capacity", "Horizon L2 IP",
	}
	ReportColumns = []string{
		"Site Location", "Ticket ID", "Status", "Reason", "Last Update",
		"Issue Date", "Last Follow Up",
	}
)

func cellAxis(col, row int) string {
	return string(rune('A'+col)) + strconv.Itoa(row)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func writeRow(f *excelize.File, sheet string, row int, values []string) {
	for col, v := range values {
		f.SetCellValue(sheet, cellAxis(col, row), v)
	}
}

// SitesWorkbook materializes the full site inventory into a single-sheet
// workbook, one row per site in the given order.
func SitesWorkbook(sites []domain.Site) *excelize.File {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", siteSheet)
	writeRow(f, siteSheet, 1, SiteColumns)
	for i, s := range sites {
		writeRow(f, siteSheet, i+2, []string{
			s.SiteLocation,
			s.DeviceName,
			s.SdwanSiteId,
			s.LanIp,
			s.AtmPort,
			s.ElIspInfoDetails,
			s.ElIspCapacity,
			s.ElIspL2Ip,
			s.IlevantIspInfoDetails,
			s.IlevantIspCapacity,
			s.HorizonIspInfoDetails,
			s.HorizonIspCapacity,
			s.HorizonIspL2Ip,
		})
	}
	return f
}

// ReportsWorkbook materializes the full problem report log into a
// single-sheet workbook, one row per report in the given order. Dates render
// as YYYY-MM-DD, absent text fields as empty cells.
func ReportsWorkbook(reports []repository.ReportDetail) *excelize.File {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", reportSheet)
	writeRow(f, reportSheet, 1, ReportColumns)
	for i, r := range reports {
		writeRow(f, reportSheet, i+2, []string{
			r.SiteLocation,
			r.TicketId,
			r.Status,
			r.Reason,
			r.LastUpdate,
			formatDate(r.IssueDate),
			formatDate(r.LastFollowUp),
		})
	}
	return f
}
