package mailsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartMessage = "From: Jane Customer <jane@example.com>\r\n" +
	"To: support@example.com\r\n" +
	"Subject: Refund request\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"I want a refund for order 42.\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>I want a <b>refund</b> for order 42.</p>\r\n" +
	"--b1--\r\n"

const htmlOnlyMessage = "From: billing@example.com\r\n" +
	"Subject: Invoice\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<div>Invoice &amp; receipt</div><p>Total: 10 &lt; 20</p>\r\n"

func TestParseMessagePrefersPlainText(t *testing.T) {
	msg, err := ParseMessage([]byte(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "Refund request", msg.Subject)
	assert.Equal(t, "Jane Customer", msg.From)
	assert.Equal(t, 2006, msg.Date.Year())
	assert.Equal(t, "I want a refund for order 42.", strings.TrimSpace(msg.Body))
}

func TestParseMessageStripsHTMLOnlyBody(t *testing.T) {
	msg, err := ParseMessage([]byte(htmlOnlyMessage))
	require.NoError(t, err)

	assert.Equal(t, "billing@example.com", msg.From)
	assert.Equal(t, "Invoice & receipt\nTotal: 10 < 20", msg.Body)
}

func TestReadFileEML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refund.EML")
	require.NoError(t, os.WriteFile(path, []byte(multipartMessage), 0o600))

	body, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "I want a refund for order 42.", strings.TrimSpace(body))
}

func TestReadFilePlainTextIsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.txt")
	content := "  Subject: not a header\n\nhello  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	body, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.eml"))
	assert.Error(t, err)
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := []Summary{
		{UID: 1, Date: base},
		{UID: 2, Date: base.Add(2 * time.Hour)},
		{UID: 3, Date: base.Add(time.Hour)},
	}
	sortNewestFirst(s)
	assert.Equal(t, []uint32{2, 3, 1}, []uint32{s[0].UID, s[1].UID, s[2].UID})
}

func TestSummaryLabel(t *testing.T) {
	assert.Equal(t, "bob  (no subject)", Summary{From: "bob"}.Label())
}
