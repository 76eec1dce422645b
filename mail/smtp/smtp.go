package smtp

import "time"

// Config contains SMTP connection parameters.
type Config struct {
	Host     string        // smtp.gmail.com
	Port     int           // 587 for STARTTLS, 465 for implicit TLS
	Username string        // username or email; empty disables auth
	Password string        // password or app password
	From     string        // sender address, "Name <addr>" allowed
	Secure   bool          // implicit TLS from the first byte; otherwise STARTTLS when offered
	Insecure bool          // skip certificate verification
	Timeout  time.Duration // dial and command timeout
}
