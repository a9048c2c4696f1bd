package mailingservices

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/config"
)

var ErrNotConfigured = errors.New("mail delivery is not configured")

type Mailer interface {
	SendMail(ctx context.Context, subject, body, recipient string) error
}

// client is the part of *mailgun.MailgunImpl used here.
type client interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

type Mailgun struct {
	Client client
	from   string
}

// Init builds the mailgun client. Without an api key the mailer stays idle.
func (m *Mailgun) Init(c *config.Config) {
	m.from = c.MgEmailFrom
	if c.MailgunApiKey == "" || c.MgDomain == "" {
		return
	}
	m.Client = mailgun.NewMailgun(c.MgDomain, c.MailgunApiKey)
}

func (m *Mailgun) SendMail(ctx context.Context, subject, body, recipient string) error {
	if m.Client == nil {
		return ErrNotConfigured
	}
	message := m.Client.NewMessage(m.from, subject, "", recipient)
	message.SetHtml(body)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, _, err := m.Client.Send(ctx, message); err != nil {
		return errors.Wrap(err, "mailgun send")
	}
	return nil
}

// WelcomeMail renders the subject and body sent after signup.
func WelcomeMail(firstName string) (string, string) {
	return "Welcome to the book club",
		fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Share what you are reading and say hello to other readers.</p>", firstName)
}
