// Package mailer delivers email through a Redis-backed queue, decoupling
// delivery from the HTTP request lifecycle: callers enqueue and move on, and a
// background worker talks to the SMTP transport.
package mailer

import "context"

// Attachment references a file to attach to a message. ContentID, when set,
// lets the HTML body reference the attachment inline via cid:.
type Attachment struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	ContentID string `json:"contentId,omitempty"`
}

// Message is the structured mail handed to the gateway.
type Message struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer accepts messages for asynchronous delivery. Enqueue returns as soon
// as the message is queued; delivery failures are logged by the worker and
// never reach the caller.
type Mailer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Sender performs the actual delivery of a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
