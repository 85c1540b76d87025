package domain

import "context"

// Mailer sends a single email. Implementations decide transport (SES, noop).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// ContactService delivers contact-form messages to the site operators.
type ContactService interface {
	SendContactMessage(ctx context.Context, name, replyTo, subject, body string) error
}
