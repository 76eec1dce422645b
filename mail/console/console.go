package console

import (
	"context"
	"log/slog"

	"github.com/pure-golang/webcore/logger"
	"github.com/pure-golang/webcore/mail"
)

var _ mail.Sender = (*Sender)(nil)

// Sender writes messages to the operator log instead of delivering them.
// Used in development; it never touches the network.
type Sender struct {
	logger *slog.Logger
}

// NewSender creates a console Sender. A nil logger means the context logger at send time.
func NewSender(l *slog.Logger) *Sender {
	return &Sender{logger: l}
}

// Send logs recipient, subject and content and always succeeds.
func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	l := s.logger
	if l == nil {
		l = logger.Named(ctx, "mail")
	}

	l.InfoContext(ctx, "email (development mode)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("content", msg.Content()),
	)
	return nil
}

// Close is a no-op.
func (s *Sender) Close() error {
	return nil
}
