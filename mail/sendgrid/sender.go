package sendgrid

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/webcore/mail"
)

var tracer = otel.Tracer("github.com/pure-golang/webcore/mail/sendgrid")

var _ mail.Sender = (*Sender)(nil)

// Sender implements mail.Sender over the SendGrid v3 Mail Send API.
type Sender struct {
	cfg Config
}

func NewSender(cfg Config) *Sender {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	return &Sender{cfg: cfg}
}

// Send posts msg to SendGrid. Any non-2xx answer is an error.
func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := tracer.Start(ctx, "SendGrid.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("sendgrid.host", s.cfg.Host),
		attribute.String("mail.subject", msg.Subject),
	)

	if err := s.send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Sender) send(ctx context.Context, msg mail.Message) error {
	if s.cfg.APIKey == "" {
		return errors.New("sendgrid api key is not set")
	}
	if msg.To == "" {
		return mail.ErrNoRecipient
	}

	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return errors.Wrap(err, "invalid from address")
	}

	m := sgmail.NewSingleEmail(
		sgmail.NewEmail(from.Name, from.Address),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)

	client := sg.NewSendClient(s.cfg.APIKey)
	client.BaseURL = s.cfg.Host + sendEndpoint

	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return errors.Wrap(err, "failed to send email via sendgrid")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

// Close is a no-op: every Send uses its own request.
func (s *Sender) Close() error {
	return nil
}
