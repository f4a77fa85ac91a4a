package service

import (
	"fmt"
	"html"
	"strings"

	"mdla_service/internal/config"
	"mdla_service/internal/model"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier tells staff about new contact messages.
type Notifier interface {
	NotifyContact(msg *model.ContactMessage) error
}

// NewNotifier returns a SendGrid notifier when an API key and a staff address are
// configured, and a no-op one otherwise.
func NewNotifier(cfg *config.MailConfig) Notifier {
	if cfg.SendGridAPIKey == "" || cfg.StaffAddress == "" {
		return NoopNotifier{}
	}
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		cfg:    cfg,
	}
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyContact(*model.ContactMessage) error { return nil }

type SendGridNotifier struct {
	client *sendgrid.Client
	cfg    *config.MailConfig
}

func (n *SendGridNotifier) NotifyContact(msg *model.ContactMessage) error {
	from := mail.NewEmail(n.cfg.FromName, n.cfg.FromAddress)
	to := mail.NewEmail("MDLA Service", n.cfg.StaffAddress)

	subject := msg.Subject
	if subject == "" {
		subject = "Nouveau message de contact"
	}
	subject = fmt.Sprintf("[Contact] %s", subject)

	plain := fmt.Sprintf("De: %s <%s>\nTéléphone: %s\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Message)
	body := fmt.Sprintf("<p><strong>De:</strong> %s &lt;%s&gt;<br><strong>Téléphone:</strong> %s</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(msg.Phone),
		strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"),
	)

	message := mail.NewSingleEmail(from, subject, to, plain, body)
	message.SetReplyTo(mail.NewEmail(msg.Name, msg.Email))

	resp, err := n.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
