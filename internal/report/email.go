package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fes-bids/internal/config"
	"fes-bids/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Sender delivers prepared messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends the forecast email to the trading desk.
type Mailer struct {
	From   string
	To     []string
	Cc     []string
	Sender Sender
}

// NewMailer returns nil when no SMTP host is configured.
func NewMailer(cfg config.EmailConfig, secrets config.Secrets) *Mailer {
	if cfg.Host == "" || len(cfg.To) == 0 {
		return nil
	}
	return &Mailer{
		From:   cfg.From,
		To:     cfg.To,
		Cc:     cfg.Cc,
		Sender: gomail.NewDialer(cfg.Host, cfg.Port, secrets.SMTPUsername, secrets.SMTPPassword),
	}
}

// Subject is the desk's subject line, e.g. "ISEM D-1 Generation Volumes Friday 07/02/2025".
func Subject(b *Briefing) string {
	return fmt.Sprintf("ISEM D-1 Generation Volumes %s %s", b.Day.Weekday(), b.Day)
}

// Body is the HTML body with the D-1 energy and, when the D-2 forecast
// exists, the previous figure and the signed difference.
func Body(b *Briefing) string {
	d1 := EnergyMWh(b.D1)

	var sb strings.Builder
	sb.WriteString("Hi Trading,<br><br>")
	fmt.Fprintf(&sb, "Please see attached D-1 forecast for %s<br><br>", b.Day)
	fmt.Fprintf(&sb, "Updated Forecast D-1: %.1f MWh<br>", d1)
	if b.D2 != nil {
		d2 := EnergyMWh(b.D2)
		fmt.Fprintf(&sb, "Previous Forecast D-2: %.1f MWh<br>", d2)
		fmt.Fprintf(&sb, "<br>Diff: %+.1f MWh<br>", d1-d2)
	}
	sb.WriteString("<br>No dial applied.<br>")
	sb.WriteString("<br>Kind Regards,<br>Renewables Team")
	return sb.String()
}

// Send mails the briefing. Attachments that do not exist are skipped with a
// warning rather than failing the message.
func (m *Mailer) Send(ctx context.Context, b *Briefing, attachments ...string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	if len(m.Cc) > 0 {
		msg.SetHeader("Cc", m.Cc...)
	}
	msg.SetHeader("Subject", Subject(b))
	msg.SetBody("text/html", Body(b))
	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			logger.Warnf(ctx, "email attachment %s skipped: %v", path, err)
			continue
		}
		msg.Attach(path)
	}

	if err := m.Sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send forecast email: %w", err)
	}
	logger.Infof(ctx, "forecast email sent to %s", strings.Join(m.To, ", "))
	return nil
}
