// Package mail renders the briefing to HTML and delivers it over SMTP.
package mail

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/cyberbrief/cyberbrief/internal/config"
	"github.com/cyberbrief/cyberbrief/internal/digest"
	"github.com/cyberbrief/cyberbrief/internal/logger"
	"github.com/cyberbrief/cyberbrief/internal/metrics"
	"github.com/cyberbrief/cyberbrief/internal/retry"
)

//go:embed templates/briefing.html
var templateFS embed.FS

// Story is one ranked item plus its optional AI annotation.
type Story struct {
	digest.Item
	WhyItMatters string
}

type Signal struct {
	Title       string
	Description string
}

// Briefing is everything the template needs for one day's email. An empty
// Stories slice renders the "no notable stories today" body; it is not an
// error condition.
type Briefing struct {
	Date             string
	Stories          []Story
	ExecutiveSummary string
	Signals          []Signal
}

type Emailer struct {
	host      string
	port      int
	user      string
	password  string
	recipient string
	retryCfg  retry.Config
	tmpl      *template.Template
}

func NewEmailer(cfg *config.Config) (*Emailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/briefing.html")
	if err != nil {
		return nil, fmt.Errorf("parse briefing template: %w", err)
	}
	return &Emailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		user:      cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		recipient: cfg.Recipient,
		retryCfg: retry.Config{
			Attempts: cfg.RetryAttempts,
			Delay:    cfg.RetryDelay,
			Backoff:  true,
		},
		tmpl: tmpl,
	}, nil
}

// Render produces the HTML body for the briefing.
func (e *Emailer) Render(b Briefing) (string, error) {
	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, b); err != nil {
		return "", fmt.Errorf("render briefing: %w", err)
	}
	return sb.String(), nil
}

// Send renders the briefing and delivers it, retrying transient SMTP
// failures with backoff.
func (e *Emailer) Send(ctx context.Context, b Briefing) error {
	body, err := e.Render(b)
	if err != nil {
		return err
	}

	subject := "Daily Cybersecurity Briefing - " + b.Date
	msg := e.buildMessage(subject, body)
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.user, e.password, e.host)

	err = retry.WithRetry(ctx, e.retryCfg, func() error {
		return smtp.SendMail(addr, auth, e.user, []string{e.recipient}, msg)
	})
	if err != nil {
		return fmt.Errorf("send briefing: %w", err)
	}

	logger.Info("briefing sent", "recipient", e.recipient, "stories", len(b.Stories))
	metrics.Global.IncrementEmailsSent()
	return nil
}

func (e *Emailer) buildMessage(subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + e.user + "\r\n")
	sb.WriteString("To: " + e.recipient + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}
