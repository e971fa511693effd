// Package notify sends subscriber-facing billing notifications. Messages are
// deliberately plain: a short fixed HTML body per notification type, no
// template system.
package notify

import (
	"context"
	"fmt"

	"github.com/scholarastudy-create/scholarastudy/pkg/email"
)

// EmailNotifier delivers billing notifications through the transactional
// email boundary.
type EmailNotifier struct {
	sender       email.Sender
	portalURL    string
	supportEmail string
}

// NewEmailNotifier returns a notifier over the given sender. portalURL is
// where the subscriber can fix their payment method; supportEmail is shown as
// the escalation contact.
func NewEmailNotifier(sender email.Sender, portalURL, supportEmail string) *EmailNotifier {
	return &EmailNotifier{
		sender:       sender,
		portalURL:    portalURL,
		supportEmail: supportEmail,
	}
}

// PaymentFailed tells the subscriber their renewal charge failed and where to
// update their payment method.
func (n *EmailNotifier) PaymentFailed(ctx context.Context, to string) error {
	body := fmt.Sprintf(`<p>We could not process your latest subscription payment for ScholaraStudy.</p>
<p>Your access continues for now, but the payment provider will retry the charge over the next days. To avoid losing access, please review your payment method in the <a href="%s">billing portal</a>.</p>
<p>Questions? Reach us at <a href="mailto:%s">%s</a>.</p>`,
		n.portalURL, n.supportEmail, n.supportEmail)

	err := n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Action needed: your ScholaraStudy payment failed",
		BodyHTML: body,
		Tag:      "payment-failed",
	})
	if err != nil {
		return fmt.Errorf("send payment-failed notification: %w", err)
	}
	return nil
}
