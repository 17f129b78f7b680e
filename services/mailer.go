package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"onlyifyouknow-server/models"
)

// SendGrid configuration via environment variables:
// SENDGRID_API_KEY, MAIL_FROM, BASE_URL

const mailRequestTimeout = 10 * time.Second

// Mailer sends transactional invitation email through SendGrid. Sending is
// best-effort: a failure is reported to the caller but must never fail the
// invitation itself.
type Mailer struct {
	apiKey  string
	from    string
	baseURL string
	apiURL  string
	client  *http.Client
}

func NewMailer() *Mailer {
	apiURL := os.Getenv("SENDGRID_API_URL")
	if apiURL == "" {
		apiURL = "https://api.sendgrid.com/v3/mail/send"
	}
	return &Mailer{
		apiKey:  os.Getenv("SENDGRID_API_KEY"),
		from:    os.Getenv("MAIL_FROM"),
		baseURL: os.Getenv("BASE_URL"),
		apiURL:  apiURL,
		client:  &http.Client{Timeout: mailRequestTimeout},
	}
}

// ResponseURL builds the link the invitee follows to respond. action may be
// empty, "accept" or "decline" for one-click email buttons.
func (m *Mailer) ResponseURL(token, action string) string {
	u := m.baseURL + "/invitation/respond?token=" + url.QueryEscape(token)
	if action != "" {
		u += "&action=" + url.QueryEscape(action)
	}
	return u
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMessage struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

// SendInvitation emails the invitee their response link.
func (m *Mailer) SendInvitation(inv *models.Invitation, inviterName string) error {
	if m.apiKey == "" || m.from == "" {
		return NewProviderError("mailer is not configured", nil)
	}
	if inv.Token == nil {
		return NewValidationError("invitation has no token")
	}

	body := fmt.Sprintf(
		"%s invited you to join OnlyIfYouKnow as %s.\n\n", inviterName, inv.InvitedType)
	if inv.PersonalMessage != "" {
		body += fmt.Sprintf("\"%s\"\n\n", inv.PersonalMessage)
	}
	body += fmt.Sprintf(
		"Accept: %s\nDecline: %s\n\nThis invitation expires on %s.",
		m.ResponseURL(*inv.Token, "accept"),
		m.ResponseURL(*inv.Token, "decline"),
		inv.ExpiresAt.Format("January 2, 2006"),
	)

	msg := sendGridMessage{
		From:    sendGridAddress{Email: m.from, Name: "OnlyIfYouKnow"},
		Subject: fmt.Sprintf("%s invited you to OnlyIfYouKnow", inviterName),
		Content: []sendGridContent{{Type: "text/plain", Value: body}},
	}
	msg.Personalizations = []struct {
		To []sendGridAddress `json:"to"`
	}{{To: []sendGridAddress{{Email: inv.Email, Name: inv.InviteeName}}}}

	payload, err := json.Marshal(msg)
	if err != nil {
		return NewProviderError("could not encode mail request", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mailRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return NewProviderError("could not build mail request", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return NewTransientError("mail request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewProviderError(fmt.Sprintf("mail provider returned status %d", resp.StatusCode), nil)
	}
	return nil
}
