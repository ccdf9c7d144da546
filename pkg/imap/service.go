package imap

import (
	"context"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	accountdomain "mailpilot-backend/internal/account/domain"
	maildomain "mailpilot-backend/internal/mail/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	gomail "github.com/emersion/go-message/mail"
)

// Config holds the connection settings for one IMAP/SMTP account pair
type Config struct {
	IMAPAddr string // host:port, e.g. "imap.example.com:993"
	SMTPAddr string // host:port, e.g. "smtp.example.com:587"
	Username string
	Password string
}

// Service is the generic IMAP source adapter with SMTP submission for sends
type Service struct {
	cfg Config
}

// NewService creates a new IMAP service
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// FetchSince searches INBOX for messages received within the window.
// IMAP SINCE has date granularity, so results are re-filtered by the
// envelope date before being returned, oldest first.
func (s *Service) FetchSince(ctx context.Context, account accountdomain.Account, hoursBack int) ([]maildomain.IncomingEmail, error) {
	c, err := client.DialTLS(s.cfg.IMAPAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", s.cfg.IMAPAddr, err)
	}
	defer c.Logout()
	c.Timeout = 30 * time.Second

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("imap select: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(hoursBack) * time.Hour)
	criteria := imap.NewSearchCriteria()
	criteria.Since = cutoff.Truncate(24 * time.Hour)

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(uids) == 0 {
		return []maildomain.IncomingEmail{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var emails []maildomain.IncomingEmail
	for msg := range messages {
		if msg.Envelope == nil || msg.Envelope.Date.Before(cutoff) {
			continue
		}
		emails = append(emails, maildomain.IncomingEmail{
			AccountID: account.Address,
			ID:        fmt.Sprintf("%d", msg.Uid),
			Provider:  account.Provider,
			Sender:    formatSender(msg.Envelope),
			Subject:   msg.Envelope.Subject,
			Body:      extractTextBody(msg.GetBody(section)),
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	if emails == nil {
		emails = []maildomain.IncomingEmail{}
	}
	return emails, nil
}

// Send submits the reply over SMTP. STARTTLS is negotiated when the server
// offers it; threadID is unused for plain IMAP accounts.
func (s *Service) Send(ctx context.Context, accountID, to, subject, body, threadID string) error {
	host := s.cfg.SMTPAddr
	if i := strings.Index(host, ":"); i != -1 {
		host = host[:i]
	}
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", accountID)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.cfg.SMTPAddr, auth, accountID, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func formatSender(envelope *imap.Envelope) string {
	if len(envelope.From) == 0 {
		return ""
	}
	from := envelope.From[0]
	addr := from.Address()
	if from.PersonalName != "" {
		return fmt.Sprintf("%s <%s>", from.PersonalName, addr)
	}
	return addr
}

// extractTextBody walks the MIME structure and returns the first inline
// text part.
func extractTextBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return ""
	}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}
		if _, ok := p.Header.(*gomail.InlineHeader); ok {
			body, err := io.ReadAll(p.Body)
			if err == nil && len(body) > 0 {
				return string(body)
			}
		}
	}
	return ""
}
