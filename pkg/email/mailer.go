// Package email defines the transactional email boundary. Production uses the
// Postmark-backed sender; development uses a sender that writes to the log
// instead of delivering mail.
package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

// emailRegex is a pragmatic format check; deliverability is the provider's job.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Sender represents an interface for sending transactional emails.
type Sender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending a single email.
type SendEmailParams struct {
	SendTo   string // Email address of the recipient
	Subject  string
	BodyHTML string
	Tag      string // Optional provider-side category tag
}

// Validate checks the parameters before handing them to a provider.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: recipient must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// Config holds email sender configuration. The Postmark tokens are optional so
// development environments can run with the log-only sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"billing@scholarastudy.com"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@scholarastudy.com"`
}
