package sendgrid

const (
	DefaultHost  = "https://api.sendgrid.com"
	sendEndpoint = "/v3/mail/send"
)

// Config contains SendGrid API parameters.
type Config struct {
	APIKey string
	From   string // sender address, "Name <addr>" allowed
	Host   string // API host; DefaultHost when empty
}
