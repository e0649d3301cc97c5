package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender notifies applicants about admission outcomes. Nil = no-op. Calls are
// made post-commit and fire-and-forget: a send failure never reverses the
// admission state that was already written.
type Sender interface {
	SendApproved(ctx context.Context, toEmail, firstName string) error
	SendWaitlisted(ctx context.Context, toEmail, firstName, reason string) error
}

// BrevoClient sends emails via Brevo (Sendinblue) API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@teed.club"
}

// send sends one email via Brevo API.
func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Teed Club"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@teed.club", Name: "Teed Club Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendApproved sends the beta approval email.
func (c *BrevoClient) SendApproved(ctx context.Context, toEmail, firstName string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	content := approvedContent(firstName)
	return c.send(ctx, toEmail, "You're in! Welcome to the Teed Club beta", EmailLayout(content))
}

// SendWaitlisted sends the waitlist confirmation (pending or at-capacity).
func (c *BrevoClient) SendWaitlisted(ctx context.Context, toEmail, firstName, reason string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	content := waitlistedContent(firstName, reason)
	return c.send(ctx, toEmail, "You're on the Teed Club waitlist", EmailLayout(content))
}

func approvedContent(firstName string) string {
	bagURL := "https://teed.club/my-bag"
	return fmt.Sprintf(`
    <h1>Welcome to the Club, %s!</h1>
    <p>Your spot in the <strong>Teed Club</strong> beta is confirmed. You can now build your bag, share your setup, and see what the rest of the club is playing.</p>
    <center>
      <a href="%s" class="teed-button">Build Your Bag</a>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not request beta access, you can safely ignore this email.
    </p>
    <p>— The Teed Club Team</p>
`, EscapeHTML(firstName), bagURL)
}

func waitlistedContent(firstName, reason string) string {
	note := "We're letting members in as fast as capacity allows."
	if reason == "at_capacity" {
		note = "The beta is currently full — you'll be first in line when a spot opens up."
	}
	return fmt.Sprintf(`
    <h1>You're on the list, %s</h1>
    <p>Thanks for applying to the <strong>Teed Club</strong> beta. %s</p>
    <p>Have an invite code from a member? Redeem it any time to skip the line.</p>
    <p>— The Teed Club Team</p>
`, EscapeHTML(firstName), note)
}
