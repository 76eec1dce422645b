package notification

import "time"

// Transport определяет способ доставки писем
type Transport string

const (
	TransportConsole  Transport = "console"  // лог вместо отправки, для разработки
	TransportSendGrid Transport = "sendgrid" // SendGrid API
	TransportResend   Transport = "resend"   // Resend API
	TransportSMTP     Transport = "smtp"     // любой SMTP сервер

	// TransportNodemailer is the historical name of the SMTP transport.
	TransportNodemailer Transport = "nodemailer"
)

// Canonical resolves aliases. Unknown values are returned unchanged.
func (t Transport) Canonical() Transport {
	if t == TransportNodemailer {
		return TransportSMTP
	}
	return t
}

// Config содержит конфигурацию отправки писем.
// Провайдер выбирается один на процесс.
type Config struct {
	Transport Transport `envconfig:"EMAIL_SERVICE" default:"console"`
	APIKey    string    `envconfig:"EMAIL_API_KEY"`
	From      string    `envconfig:"EMAIL_FROM" default:"noreply@yourapp.com"`
	// SMTP (используется когда TransportSMTP)
	SMTPHost     string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPSecure   bool          `envconfig:"SMTP_SECURE" default:"false"`
	SMTPUser     string        `envconfig:"SMTP_USER"`
	SMTPPass     string        `envconfig:"SMTP_PASS"`
	SMTPTimeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"15s"`
	SendGridHost string        `envconfig:"SENDGRID_HOST"`
	ResendURL    string        `envconfig:"RESEND_BASE_URL"`
}
