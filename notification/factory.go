package notification

import (
	"log/slog"

	"github.com/pure-golang/webcore/mail"
	"github.com/pure-golang/webcore/mail/console"
	"github.com/pure-golang/webcore/mail/resend"
	"github.com/pure-golang/webcore/mail/sendgrid"
	"github.com/pure-golang/webcore/mail/smtp"
)

// Factory builds the Sender for one transport from the dispatcher config.
type Factory func(cfg Config, l *slog.Logger) (mail.Sender, error)

// defaultFactories is the closed set of transports. Options.Factories may
// replace entries but never add new keys.
var defaultFactories = map[Transport]Factory{
	TransportConsole:  newConsole,
	TransportSendGrid: newSendGrid,
	TransportResend:   newResend,
	TransportSMTP:     newSMTP,
}

// Transports lists the supported canonical transports.
func Transports() []Transport {
	return []Transport{TransportConsole, TransportSendGrid, TransportResend, TransportSMTP}
}

func newConsole(_ Config, l *slog.Logger) (mail.Sender, error) {
	return console.NewSender(l), nil
}

func newSendGrid(cfg Config, _ *slog.Logger) (mail.Sender, error) {
	return sendgrid.NewSender(sendgrid.Config{
		APIKey: cfg.APIKey,
		From:   cfg.From,
		Host:   cfg.SendGridHost,
	}), nil
}

func newResend(cfg Config, _ *slog.Logger) (mail.Sender, error) {
	return resend.NewSender(resend.Config{
		APIKey:  cfg.APIKey,
		From:    cfg.From,
		BaseURL: cfg.ResendURL,
	})
}

func newSMTP(cfg Config, _ *slog.Logger) (mail.Sender, error) {
	return smtp.NewSender(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.From,
		Secure:   cfg.SMTPSecure,
		Timeout:  cfg.SMTPTimeout,
	}), nil
}
