package webui_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/netopsdesk/siteportal/config"
	"github.com/netopsdesk/siteportal/internal/app"
	"github.com/netopsdesk/siteportal/internal/domain"
	"github.com/netopsdesk/siteportal/internal/repository"
	"github.com/netopsdesk/siteportal/internal/webserver"
	"github.com/netopsdesk/siteportal/internal/webui"
)

var dbSeq int

// newTestServer boots the full portal against a fresh in-memory database and
// seeds one user per role.
func newTestServer(t *testing.T) (*httptest.Server, *repository.Repos) {
	t.Helper()

	dbSeq++
	dsn := fmt.Sprintf("file:webuitest%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	application := app.NewApplication(&config.AppConfig{
		Web: config.WebConfig{Secret: "test-secret"},
	})
	application.OverrideDB(db)
	require.NoError(t, application.MigrateDB(false))

	repos := repository.New(db)
	ctx := context.Background()
	for _, u := range []struct{ username, password, role string }{
		{"boss", "admin-pass", domain.RoleAdmin},
		{"net1", "net-pass", domain.RoleNetworkTeam},
		{"noc1", "noc-pass", domain.RoleNocTeam},
	} {
		user := domain.SysUser{Username: u.username, Role: u.role}
		require.NoError(t, user.SetPassword(u.password))
		require.NoError(t, repos.Users.Create(ctx, &user))
	}

	webserver.Init(application)
	webui.InitRouter()

	ts := httptest.NewServer(webserver.Instance().Engine())
	t.Cleanup(ts.Close)
	return ts, repos
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func login(t *testing.T, client *http.Client, ts *httptest.Server, username, password string) string {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	return bodyOf(t, resp)
}

func validSiteForm(location string) url.Values {
	return url.Values{
		"site_location": {location},
		"device_name":   {"edge-" + location},
		"sdwan_site_id": {"SW-1"},
		"lan_ip":        {"10.1.1.1"},
		"el_capacity":   {"100"},
	}
}

func TestLoginGenericFailureMessage(t *testing.T) {
	ts, _ := newTestServer(t)

	wrongPassword := login(t, newClient(t), ts, "boss", "not-the-password")
	unknownUser := login(t, newClient(t), ts, "nobody", "whatever")

	assert.Contains(t, wrongPassword, "Invalid username or password")
	assert.Contains(t, unknownUser, "Invalid username or password")
}

func TestLoginSuccessAndLogout(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	body := login(t, client, ts, "boss", "admin-pass")
	assert.Contains(t, body, "Welcome back, boss!")
	assert.Contains(t, body, "Site Data")

	resp, err := client.Get(ts.URL + "/logout")
	require.NoError(t, err)
	body = bodyOf(t, resp)
	assert.Contains(t, body, "You have been logged out")
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(ts.URL + "/site_data")
	require.NoError(t, err)
	body := bodyOf(t, resp)
	assert.Contains(t, body, "Please log in to access this page.")
	assert.Contains(t, body, "Login")
}

func TestNocTeamCannotCreateSite(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "noc1", "noc-pass")

	resp, err := client.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	body := bodyOf(t, resp)

	// Denied callers land on the site listing with a notice, not a 403 page.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Access Denied: You do not have permission.")

	sites, err := repos.Sites.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestSiteCreateValidation(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "net1", "net-pass")

	form := validSiteForm("Amman HQ")
	form.Set("lan_ip", "not-an-ip")
	resp, err := client.PostForm(ts.URL+"/submit_site", form)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Invalid IP address.")

	form = validSiteForm("Amman HQ")
	form.Del("device_name")
	resp, err = client.PostForm(ts.URL+"/submit_site", form)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "This field is required.")

	sites, err := repos.Sites.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sites, "validation failures must not persist")
}

func TestSiteCreateSearchAndClone(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	resp, err := client.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "New site added")

	sites, err := repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	source := sites[0]

	resp, err = client.Get(ts.URL + "/site_data?search=AMMAN")
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Amman HQ")

	resp, err = client.Get(ts.URL + "/site_data?search=no-such-site")
	require.NoError(t, err)
	assert.NotContains(t, bodyOf(t, resp), "Amman HQ")

	// Clone keeps field values, gets a new identity.
	resp, err = client.PostForm(fmt.Sprintf("%s/site_data/clone/%d", ts.URL, source.ID),
		validSiteForm("Amman HQ"))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Site cloned successfully as new site.")

	sites, err = repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	clone := sites[0]
	if clone.ID == source.ID {
		clone = sites[1]
	}
	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, source.SiteLocation, clone.SiteLocation)
	assert.Equal(t, source.DeviceName, clone.DeviceName)

	// Mutating the clone leaves the source untouched.
	form := validSiteForm("Aqaba Branch")
	resp, err = client.PostForm(fmt.Sprintf("%s/site_data/edit/%d", ts.URL, clone.ID), form)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Site updated successfully")

	reloaded, err := repos.Sites.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amman HQ", reloaded.SiteLocation)
}

func validReportForm(siteID int64) url.Values {
	return url.Values{
		"site_location":  {fmt.Sprint(siteID)},
		"ticket_id":      {"INC-1001"},
		"status":         {"DOWN"},
		"reason":         {"fiber cut"},
		"issue_date":     {"2024-03-05"},
		"last_follow_up": {"2024-03-06"},
	}
}

func TestReportLifecycleRoles(t *testing.T) {
	ts, repos := newTestServer(t)
	ctx := context.Background()

	admin := newClient(t)
	login(t, admin, ts, "boss", "admin-pass")
	resp, err := admin.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	bodyOf(t, resp)
	sites, err := repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	siteID := sites[0].ID

	// Network Team may create a report...
	net := newClient(t)
	login(t, net, ts, "net1", "net-pass")
	resp, err = net.PostForm(ts.URL+"/daily_problem_report", validReportForm(siteID))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Problem report added")

	reports, err := repos.Reports.ListDetailed(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	reportID := reports[0].ID

	// ...but not edit it.
	form := validReportForm(siteID)
	form.Set("status", "UP")
	resp, err = net.PostForm(fmt.Sprintf("%s/daily_problem_report/edit/%d", ts.URL, reportID), form)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Access Denied: You do not have permission.")

	// NOC Team edits, clones and deletes.
	noc := newClient(t)
	login(t, noc, ts, "noc1", "noc-pass")
	resp, err = noc.PostForm(fmt.Sprintf("%s/daily_problem_report/edit/%d", ts.URL, reportID), form)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Problem report updated")

	updated, err := repos.Reports.GetByID(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusUp, updated.Status)

	resp, err = noc.PostForm(fmt.Sprintf("%s/daily_problem_report/clone/%d", ts.URL, reportID),
		validReportForm(siteID))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Problem report cloned successfully as new report.")

	reports, err = repos.Reports.ListDetailed(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestReportRejectsUnknownSite(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	resp, err := client.PostForm(ts.URL+"/daily_problem_report", validReportForm(9999))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Not a valid choice.")

	reports, err := repos.Reports.ListDetailed(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports, "a stale site id must not persist")

	// Editing an existing report to a stale site id is rejected the same way.
	resp, err = client.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	bodyOf(t, resp)
	sites, err := repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	siteID := sites[0].ID

	resp, err = client.PostForm(ts.URL+"/daily_problem_report", validReportForm(siteID))
	require.NoError(t, err)
	bodyOf(t, resp)
	reports, err = repos.Reports.ListDetailed(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	resp, err = client.PostForm(fmt.Sprintf("%s/daily_problem_report/edit/%d", ts.URL, reports[0].ID),
		validReportForm(9999))
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Not a valid choice.")

	reloaded, err := repos.Reports.GetByID(ctx, reports[0].ID)
	require.NoError(t, err)
	assert.Equal(t, siteID, reloaded.SiteId)
}

func TestMalformedIDTreatedAsNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")

	for _, path := range []string{
		"/site_data/edit/abc",
		"/daily_problem_report/edit/abc",
	} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		bodyOf(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestSiteDeleteRejectedWhileReportsExist(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	resp, err := client.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	bodyOf(t, resp)
	sites, err := repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	siteID := sites[0].ID

	resp, err = client.PostForm(ts.URL+"/daily_problem_report", validReportForm(siteID))
	require.NoError(t, err)
	bodyOf(t, resp)

	resp, err = client.PostForm(fmt.Sprintf("%s/site_data/delete/%d", ts.URL, siteID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Site has problem reports and cannot be deleted")

	_, err = repos.Sites.GetByID(ctx, siteID)
	assert.NoError(t, err, "site must survive the rejected delete")

	// With the report gone the delete goes through.
	reports, err := repos.Reports.ListDetailed(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	resp, err = client.PostForm(fmt.Sprintf("%s/daily_problem_report/delete/%d", ts.URL, reports[0].ID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Report deleted")

	resp, err = client.PostForm(fmt.Sprintf("%s/site_data/delete/%d", ts.URL, siteID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Site deleted")

	_, err = repos.Sites.GetByID(ctx, siteID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserEditPasswordSemantics(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	noc, err := repos.Users.GetByUsername(ctx, "noc1")
	require.NoError(t, err)
	originalHash := noc.Password

	// Empty password submission keeps the stored hash.
	resp, err := client.PostForm(fmt.Sprintf("%s/admin/edit/%d", ts.URL, noc.ID), url.Values{
		"username": {"noc1"},
		"password": {""},
		"role":     {domain.RoleNocTeam},
	})
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "User updated successfully")

	reloaded, err := repos.Users.GetByID(ctx, noc.ID)
	require.NoError(t, err)
	assert.Equal(t, originalHash, reloaded.Password)

	// A new password replaces the hash.
	resp, err = client.PostForm(fmt.Sprintf("%s/admin/edit/%d", ts.URL, noc.ID), url.Values{
		"username": {"noc1"},
		"password": {"brand-new-pass"},
		"role":     {domain.RoleNocTeam},
	})
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "User updated successfully")

	reloaded, err = repos.Users.GetByID(ctx, noc.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.CheckPassword("noc-pass"))
	assert.True(t, reloaded.CheckPassword("brand-new-pass"))
}

func TestUserDeleteProtections(t *testing.T) {
	ts, repos := newTestServer(t)
	ctx := context.Background()

	boss, err := repos.Users.GetByUsername(ctx, "boss")
	require.NoError(t, err)
	noc, err := repos.Users.GetByUsername(ctx, "noc1")
	require.NoError(t, err)

	// Non-admin callers are turned away from user management.
	nocClient := newClient(t)
	login(t, nocClient, ts, "noc1", "noc-pass")
	resp, err := nocClient.PostForm(fmt.Sprintf("%s/admin/delete/%d", ts.URL, boss.ID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Access Denied: You do not have permission.")

	admin := newClient(t)
	login(t, admin, ts, "boss", "admin-pass")

	resp, err = admin.PostForm(fmt.Sprintf("%s/admin/delete/%d", ts.URL, boss.ID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "You cannot delete your own account.")
	_, err = repos.Users.GetByID(ctx, boss.ID)
	assert.NoError(t, err)

	resp, err = admin.PostForm(fmt.Sprintf("%s/admin/delete/%d", ts.URL, noc.ID), nil)
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "User deleted")
	_, err = repos.Users.GetByID(ctx, noc.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserCreate(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	// Duplicate username is rejected before persisting.
	resp, err := client.PostForm(ts.URL+"/admin", url.Values{
		"username": {"noc1"},
		"password": {"another-pass"},
		"role":     {domain.RoleNocTeam},
	})
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "Username already exists.")

	resp, err = client.PostForm(ts.URL+"/admin", url.Values{
		"username": {"noc2"},
		"password": {"noc2-pass"},
		"role":     {domain.RoleNocTeam},
	})
	require.NoError(t, err)
	assert.Contains(t, bodyOf(t, resp), "User created successfully")

	created, err := repos.Users.GetByUsername(ctx, "noc2")
	require.NoError(t, err)
	assert.True(t, created.CheckPassword("noc2-pass"))
}

func TestExports(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "noc1", "noc-pass")

	resp, err := client.Get(ts.URL + "/export_sites")
	require.NoError(t, err)
	bodyOf(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="site_data.xlsx"`,
		resp.Header.Get("Content-Disposition"))

	resp, err = client.Get(ts.URL + "/export_reports")
	require.NoError(t, err)
	bodyOf(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="daily_problem_reports.xlsx"`,
		resp.Header.Get("Content-Disposition"))
}

func TestAddToDailyReportShortcut(t *testing.T) {
	ts, repos := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")
	ctx := context.Background()

	resp, err := client.PostForm(ts.URL+"/submit_site", validSiteForm("Amman HQ"))
	require.NoError(t, err)
	bodyOf(t, resp)
	sites, err := repos.Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	resp, err = client.Get(fmt.Sprintf("%s/site_data/add_to_daily_report/%d", ts.URL, sites[0].ID))
	require.NoError(t, err)
	body := bodyOf(t, resp)
	assert.Contains(t, body, "Daily Problem Report")
	assert.Contains(t, body, "Amman HQ")

	resp, err = client.Get(ts.URL + "/site_data/add_to_daily_report/9999")
	require.NoError(t, err)
	bodyOf(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndexRedirectsToListing(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts, "boss", "admin-pass")

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	body := bodyOf(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Site Data")
}
