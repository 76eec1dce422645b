package resend

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	rs "github.com/resend/resend-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/webcore/mail"
)

var tracer = otel.Tracer("github.com/pure-golang/webcore/mail/resend")

var _ mail.Sender = (*Sender)(nil)

// Sender implements mail.Sender over the Resend API.
type Sender struct {
	cfg     Config
	baseURL *url.URL
}

func NewSender(cfg Config) (*Sender, error) {
	s := &Sender{cfg: cfg}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid resend base url")
		}
		// клиент резолвит "emails" относительно BaseURL
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		s.baseURL = u
	}
	return s, nil
}

func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := tracer.Start(ctx, "Resend.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("mail.subject", msg.Subject))

	id, err := s.send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("resend.email_id", id))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Sender) send(ctx context.Context, msg mail.Message) (string, error) {
	if s.cfg.APIKey == "" {
		return "", errors.New("resend api key is not set")
	}
	if msg.To == "" {
		return "", mail.ErrNoRecipient
	}

	client := rs.NewClient(s.cfg.APIKey)
	if s.baseURL != nil {
		client.BaseURL = s.baseURL
	}

	sent, err := client.Emails.SendWithContext(ctx, &rs.SendEmailRequest{
		From:    s.cfg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to send email via resend")
	}

	return sent.Id, nil
}

func (s *Sender) Close() error {
	return nil
}
