package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. It keeps the last
// message so development setups and tests can inspect it.
type NoopSender struct {
	mu   sync.Mutex
	last *SendRequest
	sent int
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records req and reports success.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.last = &req
	s.sent++
	n := s.sent
	s.mu.Unlock()

	size := 0
	for _, a := range req.Attachments {
		size += len(a.Content)
	}
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject, "attachment_bytes", size)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// Last returns the most recent message, if any.
func (s *NoopSender) Last() (SendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return SendRequest{}, false
	}
	return *s.last, true
}
