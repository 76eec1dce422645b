package resend

// Config contains Resend API parameters.
type Config struct {
	APIKey  string
	From    string
	BaseURL string // overrides https://api.resend.com/ when set
}
