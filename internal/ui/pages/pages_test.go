package pages

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		panic(err)
	}
	i18n.SetActive(bundle)
	os.Exit(m.Run())
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("в HTML нет %q", w)
		}
	}
}

func assertNotContains(t *testing.T, html string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(html, u) {
			t.Errorf("в HTML не должно быть %q", u)
		}
	}
}

var doctor = model.Session{Token: "tok", Role: rbac.RoleDoctor, SubjectID: "DR-abcdef"}

func TestLayout_LogoutOnlyWithSession(t *testing.T) {
	anon := render(t, AuthPage(AuthPageData{Mode: ModeLogin}))
	assertNotContains(t, anon, `action="/logout"`)

	withSession := render(t, NotFound(doctor))
	assertContains(t, withSession, `action="/logout"`, "Logout (Doctor)")
}

func TestAuthPage_Modes(t *testing.T) {
	login := render(t, AuthPage(AuthPageData{Mode: ModeLogin, Email: "a@b.io", Message: Error("Error: Bad email or password")}))
	assertContains(t, login, `action="/login"`, "User Login", `value="a@b.io"`, "Error: Bad email or password", "msg-error")
	assertNotContains(t, login, `name="role"`)

	register := render(t, AuthPage(AuthPageData{Mode: ModeRegister, Role: rbac.RoleDoctor}))
	assertContains(t, register, `action="/register"`, `name="role"`, `<option value="Doctor" selected>`)
}

func TestParseAuthMode(t *testing.T) {
	if ParseAuthMode("register") != ModeRegister || ParseAuthMode("") != ModeLogin || ParseAuthMode("x") != ModeLogin {
		t.Error("ParseAuthMode")
	}
}

func TestPatientHistory_States(t *testing.T) {
	records := []model.HistoryRecord{
		{ID: "r2", Date: model.Timestamp{Time: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)}, AuthorDoctorID: "DR-1", Summary: "Second", ReportURL: "http://reports/2"},
		{ID: "r1", AuthorDoctorID: "DR-1", Summary: "First"},
	}

	tests := []struct {
		name    string
		state   model.State[[]model.HistoryRecord]
		want    []string
		notWant []string
	}{
		{
			name:  "loading",
			state: model.Loading[[]model.HistoryRecord](),
			want:  []string{`data-state="loading"`, `hx-get="/patient/history"`, "Loading Patient History..."},
		},
		{
			name:    "пустая история — не ошибка",
			state:   model.Succeeded([]model.HistoryRecord{}),
			want:    []string{`id="history-message"`, `class="msg msg-warn"`, "No health records found yet."},
			notWant: []string{"msg-error", "hx-get"},
		},
		{
			name:    "ошибка",
			state:   model.Failed[[]model.HistoryRecord]("Failed to load your health history. Please try logging in again."),
			want:    []string{`data-state="failed"`, `class="msg msg-error"`, "Failed to load your health history."},
			notWant: []string{"msg-warn"},
		},
		{
			name:  "записи нумеруются от последней",
			state: model.Succeeded(records),
			want:  []string{"Record #2", "Record #1", "2024-05-02", "http://reports/2", "Date of Visit:</strong> unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, PatientHistory(tt.state))
			assertContains(t, html, tt.want...)
			assertNotContains(t, html, tt.notWant...)
		})
	}

	html := render(t, PatientHistory(model.Succeeded(records)))
	if strings.Index(html, "Record #2") > strings.Index(html, "Record #1") {
		t.Error("записи должны идти в порядке ответа backend")
	}
}

func TestRecordCard_Escaping(t *testing.T) {
	html := render(t, PatientHistory(model.Succeeded([]model.HistoryRecord{
		{Summary: `<script>alert(1)</script>`, ReportURL: "javascript:alert(1)"},
	})))
	assertNotContains(t, html, "<script>alert(1)</script>", `href="javascript:`)
	assertContains(t, html, "&lt;script&gt;")
}

func TestUploadPanel(t *testing.T) {
	ok := render(t, UploadPanel(UploadPanelData{Result: model.Succeeded("P-123456")}))
	assertContains(t, ok, "Success: Record uploaded for patient P-123456", "msg-ok", `hx-post="/doctor/records"`)

	failed := render(t, UploadPanel(UploadPanelData{
		Form:   model.UploadRequest{PatientID: "X-1", Summary: "Flu"},
		Result: model.Failed[string]("Error: Invalid Patient ID format. Must start with P-"),
	}))
	assertContains(t, failed, "msg-error", "Invalid Patient ID format", `value="X-1"`, ">Flu</textarea>")
}

func TestSearchResults(t *testing.T) {
	idle := render(t, SearchResults("", model.Idle[[]model.HistoryRecord]()))
	assertContains(t, idle, `id="search-results"`, `data-state="idle"`)
	assertNotContains(t, idle, "records found")

	empty := render(t, SearchResults("P-123456", model.Succeeded([]model.HistoryRecord{})))
	assertContains(t, empty, "Results for Patient ID: P-123456 (0 records found)", "No records found for this patient ID.")
	assertContains(t, empty, `id="search-message"`, `class="msg msg-warn"`)
	assertNotContains(t, empty, "msg-error")

	failed := render(t, SearchResults("P-123456", model.Failed[[]model.HistoryRecord]("Failed to search history. Check if your token is valid.")))
	assertContains(t, failed, "msg-error", "Failed to search history.")
	assertNotContains(t, failed, "msg-warn")

	found := render(t, SearchResults("P-123456", model.Succeeded([]model.HistoryRecord{{ID: "r1", Summary: "Flu", AuthorDoctorID: "DR-1"}})))
	assertContains(t, found, "(1 records found)", "Flu", `id="record-r1"`)
	assertNotContains(t, found, "Record #")
}

func TestDoctorPage(t *testing.T) {
	html := render(t, DoctorPage(DoctorPageData{Session: doctor, Search: SearchPanelData{Results: model.Idle[[]model.HistoryRecord]()}}))
	assertContains(t, html, "Doctor Dashboard (ID: DR-abcdef)", `id="upload-panel"`, `id="search-panel"`)
}

func TestLocalizedRender(t *testing.T) {
	ctx := i18n.WithLang(context.Background(), i18n.LangRussian)
	var buf bytes.Buffer
	if err := NotFound(model.Session{}).Render(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "Страница не найдена", `lang="ru"`)
}
