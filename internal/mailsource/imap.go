package mailsource

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/case-classifier/internal/model"
)

// recentWindow bounds the inbox search.
const recentWindow = 7 * 24 * time.Hour

// AuthError indicates the IMAP server rejected the credentials.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Summary is one inbox message as listed by the importer.
type Summary struct {
	UID     uint32
	Subject string
	From    string
	Date    time.Time
}

// Mailbox reads recent messages from the INBOX of one IMAP account.
type Mailbox struct {
	cfg      model.MailboxConfig
	password string
}

// NewMailbox returns a Mailbox for cfg authenticating with password.
func NewMailbox(cfg model.MailboxConfig, password string) *Mailbox {
	return &Mailbox{cfg: cfg, password: password}
}

// connect dials, logs in and selects INBOX. The caller must log out.
func (m *Mailbox) connect(_ context.Context) (*imapclient.Client, error) {
	addr := m.cfg.Host + ":" + m.cfg.Port

	var client *imapclient.Client
	var err error
	if m.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(m.cfg.Username, m.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{Username: m.cfg.Username, Err: err}
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	return client, nil
}

// Recent lists up to cfg.Limit messages from the last week, newest first.
func (m *Mailbox) Recent(ctx context.Context) ([]Summary, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{Since: time.Now().Add(-recentWindow)}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if m.cfg.Limit > 0 && len(uids) > m.cfg.Limit {
		uids = uids[len(uids)-m.cfg.Limit:]
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	})
	defer fetchCmd.Close()

	var summaries []Summary
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		summaries = append(summaries, summaryFromBuffer(buf))
	}
	if err := fetchCmd.Close(); err != nil {
		return summaries, fmt.Errorf("fetching envelopes: %w", err)
	}

	sortNewestFirst(summaries)
	return summaries, nil
}

// Fetch downloads the message with uid and parses its text body.
func (m *Mailbox) Fetch(ctx context.Context, uid uint32) (*Message, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(imap.UID(uid)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("message UID %d: %w", uid, ErrNoTextBody)
	}
	return ParseMessage(raw)
}

func summaryFromBuffer(buf *imapclient.FetchMessageBuffer) Summary {
	s := Summary{UID: uint32(buf.UID)}
	if buf.Envelope == nil {
		return s
	}

	s.Subject = buf.Envelope.Subject
	s.Date = buf.Envelope.Date
	if len(buf.Envelope.From) > 0 {
		from := buf.Envelope.From[0]
		if from.Name != "" {
			s.From = from.Name
		} else {
			s.From = from.Addr()
		}
	}
	return s
}

func sortNewestFirst(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.After(s[j].Date)
	})
}

// Label renders the summary as a single select option.
func (s Summary) Label() string {
	subject := s.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	if s.Date.IsZero() {
		return fmt.Sprintf("%s  %s", s.From, subject)
	}
	return fmt.Sprintf("%s  %s  %s", s.Date.Format("Jan 02 15:04"), s.From, subject)
}
