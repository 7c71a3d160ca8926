// Package mailsource loads email text into the form, either from a file on
// disk or from a recent message in an IMAP inbox.
package mailsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// ErrNoTextBody is returned when a message has neither a text/plain nor a
// text/html part.
var ErrNoTextBody = errors.New("message has no text body")

// Message is a parsed email reduced to what the form needs.
type Message struct {
	Subject string
	From    string
	Date    time.Time
	Body    string
}

// ParseMessage parses a raw RFC 5322 message. The text/plain part wins;
// an HTML-only message is reduced to plain text.
func ParseMessage(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	msg.Subject, _ = mr.Header.Subject()
	msg.Date, _ = mr.Header.Date()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = addressLabel(from[0])
	}

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		}
	}

	switch {
	case textBody != "":
		msg.Body = textBody
	case htmlBody != "":
		msg.Body = stripHTML(htmlBody)
	default:
		return nil, ErrNoTextBody
	}

	return msg, nil
}

func addressLabel(addr *mail.Address) string {
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// stripHTML turns block-level tags into line breaks, drops the remaining
// tags and decodes common entities.
func stripHTML(html string) string {
	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")
	result = htmlEntities.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
