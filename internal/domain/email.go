package domain

import "time"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template into subject, html,
// and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TransitionAlertEmailData holds data for the organizer alert email sent when
// a participant's presence status changes. Verb is "entered" or "left".
type TransitionAlertEmailData struct {
	EventName string
	UserID    string
	Verb      string
	From      PresenceStatus
	To        PresenceStatus
	Timestamp time.Time
}
