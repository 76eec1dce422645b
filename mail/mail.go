package mail

import (
	"context"
	"fmt"
	"io"
	netmail "net/mail"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoRecipient is returned by transports when a message has no recipient.
var ErrNoRecipient = errors.New("no recipient specified")

// Sender delivers messages through one transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	io.Closer
}

// Message represents one outbound email. At least one of HTML and Text should
// be set; transports do not enforce it.
type Message struct {
	To      string
	Subject string
	HTML    string // HTML body (optional)
	Text    string // Plain text body (optional)
}

// Content returns the text body, or the HTML body when there is no text.
func (m Message) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.HTML
}

// Address represents an email address.
type Address struct {
	Name    string // "John Doe"
	Address string // "john@example.com"
}

// String formats the address for a header.
func (a Address) String() string {
	if a.Name != "" {
		escapedName := strings.ReplaceAll(a.Name, "\"", "\\\"")
		return fmt.Sprintf("%s <%s>", escapedName, a.Address)
	}
	return a.Address
}

// ParseAddress accepts "john@example.com" and "John Doe <john@example.com>".
func ParseAddress(s string) (Address, error) {
	a, err := netmail.ParseAddress(s)
	if err != nil {
		return Address{}, errors.Wrapf(err, "invalid address %q", s)
	}
	return Address{Name: a.Name, Address: a.Address}, nil
}
