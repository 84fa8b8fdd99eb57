// Package email delivers operator mail such as collection backups.
package email

import (
	"context"
	"time"
)

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SendRequest is one outgoing message.
type SendRequest struct {
	To          []string
	From        string // empty uses the sender's default
	Subject     string
	HTML        string
	ReplyTo     string
	Attachments []Attachment
}

// SendResult identifies an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
