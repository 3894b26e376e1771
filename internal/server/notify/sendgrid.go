package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailNotifier e-mails event owners when someone registers for their event.
// Other notice kinds are ignored.
type MailNotifier struct {
	from   *mail.Email
	send   func(*mail.SGMailV3) (int, error)
	logger logging.Logger
}

// NewSendGridNotifier sends through the SendGrid v3 API with apiKey.
func NewSendGridNotifier(apiKey, from string, l logging.Logger) *MailNotifier {
	client := sendgrid.NewSendClient(apiKey)
	return newMailNotifier(from, func(m *mail.SGMailV3) (int, error) {
		resp, err := client.Send(m)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	}, l)
}

func newMailNotifier(from string, send func(*mail.SGMailV3) (int, error), l logging.Logger) *MailNotifier {
	return &MailNotifier{
		from:   mail.NewEmail("EventHub", from),
		send:   send,
		logger: l.With("module", "mail_notifier"),
	}
}

func (m *MailNotifier) Notify(ctx context.Context, n Notice) {
	if n.Kind != KindRegistrationCreated || n.OwnerEmail == "" {
		return
	}

	subject := fmt.Sprintf("New registration for %s", n.EventTitle)
	text := fmt.Sprintf("%s registered for your event %q.", n.UserName, n.EventTitle)
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", n.OwnerEmail), text, "")

	status, err := m.send(msg)
	if err != nil {
		m.logger.Warn(ctx, "send registration mail failed", "event_id", n.EventID, "error", err)
		return
	}
	if status >= 300 {
		m.logger.Warn(ctx, "registration mail rejected", "event_id", n.EventID, "status", status)
		return
	}
	m.logger.Info(ctx, "registration mail sent", "event_id", n.EventID)
}
