package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	accountdomain "mailpilot-backend/internal/account/domain"
	maildomain "mailpilot-backend/internal/mail/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const fetchLimit = 50

// TokenStore supplies stored OAuth tokens per account and persists refreshed
// ones. Token acquisition itself happens outside this service.
type TokenStore interface {
	Load(ctx context.Context, accountID string) (*oauth2.Token, error)
	Save(ctx context.Context, accountID string, token *oauth2.Token) error
}

// Service is the Gmail source adapter and send action
type Service struct {
	clientID     string
	clientSecret string
	tokens       TokenStore
}

// NewService creates a new Gmail service
func NewService(clientID, clientSecret string, tokens TokenStore) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       tokens,
	}
}

type notifyTokenSource struct {
	src       oauth2.TokenSource
	current   *oauth2.Token
	accountID string
	tokens    TokenStore
	ctx       context.Context
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.tokens.Save(s.ctx, s.accountID, t); err != nil {
			fmt.Printf("Failed to update token for %s: %v\n", s.accountID, err)
		}
	}
	return t, nil
}

func (s *Service) gmailClient(ctx context.Context, accountID string) (*gmail.Service, error) {
	token, err := s.tokens.Load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load token for %s: %w", accountID, err)
	}
	if token == nil {
		return nil, fmt.Errorf("no stored token for account %s", accountID)
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:       config.TokenSource(ctx, token),
		current:   token,
		accountID: accountID,
		tokens:    s.tokens,
		ctx:       ctx,
	}

	client := oauth2.NewClient(ctx, wrappedSource)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// FetchSince lists inbox messages received within the window and returns
// them oldest first. No new messages is an empty slice, not an error.
func (s *Service) FetchSince(ctx context.Context, account accountdomain.Account, hoursBack int) ([]maildomain.IncomingEmail, error) {
	srv, err := s.gmailClient(ctx, account.Address)
	if err != nil {
		return nil, err
	}

	user := "me"
	after := time.Now().Add(-time.Duration(hoursBack) * time.Hour).Unix()
	q := fmt.Sprintf("in:inbox after:%d", after)

	listResp, err := srv.Users.Messages.List(user).Q(q).MaxResults(fetchLimit).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %v", err)
	}

	emails := make([]maildomain.IncomingEmail, 0, len(listResp.Messages))
	// The list endpoint returns newest first; walk backwards to preserve
	// source order.
	for i := len(listResp.Messages) - 1; i >= 0; i-- {
		ref := listResp.Messages[i]
		msg, err := srv.Users.Messages.Get(user, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to get message %s: %v", ref.Id, err)
		}

		emails = append(emails, maildomain.IncomingEmail{
			AccountID: account.Address,
			ID:        msg.Id,
			Provider:  account.Provider,
			Sender:    getHeader(msg.Payload.Headers, "From"),
			Subject:   getHeader(msg.Payload.Headers, "Subject"),
			ThreadID:  msg.ThreadId,
			Body:      getEmailBody(msg.Payload),
		})
	}
	return emails, nil
}

// Send submits a reply through the account's Gmail. A non-empty threadID
// keeps the reply in the original conversation.
func (s *Service) Send(ctx context.Context, accountID, to, subject, body, threadID string) error {
	srv, err := s.gmailClient(ctx, accountID)
	if err != nil {
		return err
	}

	var emailMsg bytes.Buffer
	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	emailMsg.WriteString("MIME-Version: 1.0\r\n")
	emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	emailMsg.WriteString(body)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(emailMsg.Bytes()),
	}
	if threadID != "" {
		msg.ThreadId = threadID
	}

	_, err = srv.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to send message: %v", err)
	}
	return nil
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// getEmailBody prefers the plain-text part; falls back to HTML when that is
// all the message carries.
func getEmailBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/plain":
						if plainBody == "" {
							plainBody = string(data)
						}
					case "text/html":
						if htmlBody == "" {
							htmlBody = string(data)
						}
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody
	}
	return htmlBody
}
