package notification

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/pure-golang/webcore/mail"
)

const (
	PasswordResetSubject = "Reset Your Password"

	productName      = "MERN Full-Stack App"
	copyrightYear    = 2025
	resetLinkExpires = "1 hour"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	passwordResetHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/password_reset.html.tmpl"))
	passwordResetText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/password_reset.txt.tmpl"))
)

type passwordResetData struct {
	Subject   string
	Email     string
	ResetLink string
	Expiry    string
	Product   string
	Year      int

	// Shown as text in the HTML body, see verbatim.
	EmailText htmltemplate.HTML
	LinkText  htmltemplate.HTML
}

// markupChars are the only characters that can open a tag or leave an
// attribute in an HTML text node.
const markupChars = "<>\"'`"

// verbatim keeps s byte for byte in an HTML text node when it cannot form
// markup, so "user+tag@x.com" and "?a=1&b=2" are not turned into entities.
// Anything else is escaped as usual.
func verbatim(s string) htmltemplate.HTML {
	if strings.ContainsAny(s, markupChars) {
		return htmltemplate.HTML(htmltemplate.HTMLEscapeString(s))
	}
	return htmltemplate.HTML(s)
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// mustRender executes a parsed template. The templates are embedded and the
// data is a fixed struct, so an error here is a broken template file.
func mustRender(t executor, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic("notification: render template: " + err.Error())
	}
	return buf.String()
}

// PasswordResetEmail renders the password reset message for recipient.
// The same arguments always give the same message.
func PasswordResetEmail(resetLink, recipient string) mail.Message {
	data := passwordResetData{
		Subject:   PasswordResetSubject,
		Email:     recipient,
		ResetLink: resetLink,
		Expiry:    resetLinkExpires,
		Product:   productName,
		Year:      copyrightYear,
		EmailText: verbatim(recipient),
		LinkText:  verbatim(resetLink),
	}

	return mail.Message{
		To:      recipient,
		Subject: PasswordResetSubject,
		HTML:    mustRender(passwordResetHTML, data),
		Text:    mustRender(passwordResetText, data),
	}
}
