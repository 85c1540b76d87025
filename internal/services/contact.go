package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"eventmarket/internal/domain"
)

type contactService struct {
	mailer    domain.Mailer
	toAddress string
}

// NewContactService delivers contact-form messages to the operator address.
func NewContactService(mailer domain.Mailer, toAddress string) domain.ContactService {
	return &contactService{
		mailer:    mailer,
		toAddress: toAddress,
	}
}

func (s *contactService) SendContactMessage(ctx context.Context, name, replyTo, subject, body string) error {
	name = strings.TrimSpace(name)
	replyTo = strings.TrimSpace(strings.ToLower(replyTo))
	if name == "" || replyTo == "" || strings.TrimSpace(body) == "" {
		return domain.ErrInvalidInput
	}
	if !emailRegexp.MatchString(replyTo) {
		return domain.ErrInvalidInput
	}
	if subject == "" {
		subject = "New contact message"
	}

	text := fmt.Sprintf("From: %s <%s>\n\n%s", name, replyTo, body)
	htmlBody := fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(name), html.EscapeString(replyTo), html.EscapeString(body))
	if err := s.mailer.Send(s.toAddress, subject, htmlBody, text); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}
