package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const maxBodyPreview = 400

type Report struct {
	Method   string
	Endpoint string
	Elapsed  time.Duration
	Payload  domain.Payload
	Err      error
}

type SessionReport struct {
	Credentials domain.Credentials
	BaseURL     string
}

func renderReport(report Report, s styles) string {
	kind := domain.KindOf(report.Err)
	lines := []string{
		s.title.Render(requestTitle(report.Method, report.Endpoint)),
		lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render("outcome: "), kindStyle(kind, s).Render(string(kind))),
	}
	if report.Elapsed > 0 {
		lines = append(lines, s.header.Render(fmt.Sprintf("elapsed: %s", report.Elapsed.Round(time.Millisecond))))
	}

	if report.Err != nil {
		lines = append(lines, s.failure.Render(report.Err.Error()))
		if hint := hintFor(kind); hint != "" {
			lines = append(lines, s.hint.Render(hint))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if count, ok := recordCount(report.Payload); ok {
		lines = append(lines, s.header.Render(fmt.Sprintf("records: %d", count)))
	}
	lines = append(lines, s.section.Render(s.body.Render(prettyPayload(report.Payload))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(report SessionReport, s styles) string {
	lines := []string{s.title.Render("School API Session")}
	if report.BaseURL != "" {
		lines = append(lines, field("api", report.BaseURL, s))
	}

	creds := report.Credentials
	if !creds.HasToken() {
		lines = append(lines, s.empty.Render("Not signed in."), s.hint.Render(hintFor(domain.OutcomeUnauthorized)))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, field("token", "stored", s))
	if creds.User == nil {
		lines = append(lines, s.warning.Render("user record missing"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	user := creds.User
	lines = append(lines, field("user", displayName(*user), s))
	if user.ID != "" {
		lines = append(lines, field("id", string(user.ID), s))
	}
	if user.Email != "" {
		lines = append(lines, field("email", user.Email, s))
	}
	if user.Role != "" {
		lines = append(lines, field("role", string(user.Role), s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(key string, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key+": "), s.value.Render(value))
}

func displayName(user domain.User) string {
	name := strings.TrimSpace(user.Name)
	username := strings.TrimSpace(user.Username)
	switch {
	case name != "" && username != "":
		return fmt.Sprintf("%s (%s)", name, username)
	case name != "":
		return name
	case username != "":
		return username
	default:
		return "unknown"
	}
}

func requestTitle(method string, endpoint string) string {
	if method == "" {
		method = "GET"
	}
	if endpoint == "" {
		return method
	}
	return method + " " + endpoint
}

func kindStyle(kind domain.OutcomeKind, s styles) lipgloss.Style {
	switch kind {
	case domain.OutcomeSuccess:
		return s.success
	case domain.OutcomeRateLimited, domain.OutcomeEmptyBody:
		return s.warning
	default:
		return s.failure
	}
}

func hintFor(kind domain.OutcomeKind) string {
	switch kind {
	case domain.OutcomeUnauthorized:
		return "Run `sga login` to start a new session."
	case domain.OutcomeRateLimited:
		return "The server is throttling requests; try again shortly."
	case domain.OutcomeTransport:
		return "Check that the API is reachable (`sga config` shows the resolved URL)."
	default:
		return ""
	}
}

func recordCount(payload domain.Payload) (int, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, false
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return 0, false
	}
	return len(records), true
}

func prettyPayload(payload domain.Payload) string {
	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return truncate(payload.String(), maxBodyPreview)
	}
	return out.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
