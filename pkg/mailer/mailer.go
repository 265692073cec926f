// Package mailer delivers transactional email through a Resend-style HTTPS
// JSON API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

// Config carries the mail provider settings.
type Config struct {
	APIURL string
	APIKey string
	From   string
}

// Mailer sends email. Abstracted so the invitation worker can be tested
// without network access.
type Mailer interface {
	SendInvitation(ctx context.Context, inv InvitationEmail) error
}

// InvitationEmail is the dispatch-boundary payload. To, RegistrationLink
// and Role are mandatory; an invitation missing any of them is rejected
// before anything is sent.
type InvitationEmail struct {
	To               string
	RegistrationLink string
	Role             string
	Department       string
	Subject          string
}

// Validate enforces the dispatch contract.
func (e InvitationEmail) Validate() error {
	var missing []string
	if strings.TrimSpace(e.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(e.RegistrationLink) == "" {
		missing = append(missing, "registrationLink")
	}
	if strings.TrimSpace(e.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

type apiRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// HTTPMailer is the production Mailer backed by the provider API.
type HTTPMailer struct {
	cfg    Config
	client *http.Client
}

// New constructs an HTTPMailer.
func New(cfg Config) *HTTPMailer {
	return &HTTPMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendInvitation validates and posts an invitation email.
func (m *HTTPMailer) SendInvitation(ctx context.Context, inv InvitationEmail) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	subject := inv.Subject
	if subject == "" {
		subject = "You have been invited to Litrix"
	}

	payload := apiRequest{
		From:    m.cfg.From,
		To:      []string{inv.To},
		Subject: subject,
		HTML:    renderInvitationHTML(inv),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		var apiErr map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("mail provider returned %d: %v", resp.StatusCode, apiErr)
	}

	return nil
}

func renderInvitationHTML(inv InvitationEmail) string {
	var b strings.Builder
	b.WriteString("<h2>Litrix Research Portal</h2>")
	b.WriteString(fmt.Sprintf("<p>You have been invited to join Litrix as <strong>%s</strong>", html.EscapeString(inv.Role)))
	if inv.Department != "" {
		b.WriteString(fmt.Sprintf(" in the %s department", html.EscapeString(inv.Department)))
	}
	b.WriteString(".</p>")
	b.WriteString(fmt.Sprintf(`<p><a href="%s">Complete your registration</a></p>`, inv.RegistrationLink))
	b.WriteString("<p>If you did not expect this invitation you can ignore this message.</p>")
	return b.String()
}
