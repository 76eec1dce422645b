package mongo

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	SchemeMongoDB    = "mongodb"
	SchemeMongoDBSRV = "mongodb+srv"
)

// URIDetails is a password-free view of a connection string.
type URIDetails struct {
	Scheme      string
	Hosts       []string
	Username    string
	PasswordSet bool
	Database    string
	Options     url.Values
}

// ParseURI splits a mongodb:// or mongodb+srv:// connection string without
// resolving SRV records.
func ParseURI(uri string) (*URIDetails, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, errors.New("connection string has no scheme")
	}
	if scheme != SchemeMongoDB && scheme != SchemeMongoDBSRV {
		return nil, errors.Errorf("unsupported scheme %q", scheme)
	}

	d := &URIDetails{Scheme: scheme, Options: url.Values{}}

	if i := strings.Index(rest, "?"); i >= 0 {
		q, err := url.ParseQuery(rest[i+1:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse connection options")
		}
		d.Options = q
		rest = rest[:i]
	}

	hostPart := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		hostPart = rest[:i]
		db, err := url.PathUnescape(rest[i+1:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to unescape database name")
		}
		d.Database = db
	}

	if i := strings.LastIndex(hostPart, "@"); i >= 0 {
		user, pass, hasPass := strings.Cut(hostPart[:i], ":")
		name, err := url.PathUnescape(user)
		if err != nil {
			return nil, errors.Wrap(err, "failed to unescape username")
		}
		d.Username = name
		d.PasswordSet = hasPass && pass != ""
		hostPart = hostPart[i+1:]
	}

	for _, h := range strings.Split(hostPart, ",") {
		if h != "" {
			d.Hosts = append(d.Hosts, h)
		}
	}
	if len(d.Hosts) == 0 {
		return nil, errors.New("connection string has no hosts")
	}

	return d, nil
}
