package common

// EmailSender defines the contract for sending emails. Transport mechanics are
// external to this service.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender defines the contract for sending text messages.
type SMSSender interface {
	SendSMS(to, body string) error
}

// Message represents a single outbound message captured by the in-memory senders.
type Message struct {
	To      string
	Subject string
	Body    string
}

// InMemoryOutbox records messages instead of delivering them. Test helper.
type InMemoryOutbox struct {
	Emails []Message
	SMS    []Message
}

// Send records an email in memory.
func (m *InMemoryOutbox) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}
	m.Emails = append(m.Emails, Message{To: to, Subject: subject, Body: body})
	return nil
}

// SendSMS records a text message in memory.
func (m *InMemoryOutbox) SendSMS(to, body string) error {
	if m == nil {
		return nil
	}
	m.SMS = append(m.SMS, Message{To: to, Body: body})
	return nil
}

// NopEmailSender implements EmailSender without performing any action.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(string, string, string) error { return nil }

// NopSMSSender implements SMSSender without performing any action.
type NopSMSSender struct{}

// SendSMS implements SMSSender.
func (NopSMSSender) SendSMS(string, string) error { return nil }
