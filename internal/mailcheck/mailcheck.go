// Package mailcheck verifies mail account credentials against the IMAP
// server before they are handed to the backend.
package mailcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/reply-desk/internal/model"
)

// AuthError indicates the server rejected the login.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Result summarizes a successful check.
type Result struct {
	Mailbox  string
	Messages uint32
	Elapsed  time.Duration
}

// session is the part of an IMAP client a check needs.
type session interface {
	Login(username, password string) error
	SelectInbox() (uint32, error)
	Logout() error
}

type dialFunc func(addr string, useTLS bool) (session, error)

// Checker logs in to an account's IMAP server and opens INBOX.
type Checker struct {
	dial    dialFunc
	timeout time.Duration
}

// NewChecker returns a checker that gives up after timeout.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Checker{dial: dialIMAP, timeout: timeout}
}

// Address returns host:port for the account's IMAP server.
func Address(a model.MailAccount) (string, error) {
	host := strings.TrimSpace(a.IMAPHost)
	if host == "" {
		return "", errors.New("imap host is required")
	}
	if a.IMAPPort <= 0 || a.IMAPPort > 65535 {
		return "", fmt.Errorf("invalid imap port %d", a.IMAPPort)
	}
	return net.JoinHostPort(host, strconv.Itoa(a.IMAPPort)), nil
}

// Check connects, logs in and selects INBOX. Implicit TLS is used when
// the account has UseSSL set, STARTTLS otherwise.
func (c *Checker) Check(ctx context.Context, a model.MailAccount) (Result, error) {
	addr, err := Address(a)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		res, err := c.run(addr, a)
		res.Elapsed = time.Since(start)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("checking %s: %w", addr, ctx.Err())
	case o := <-done:
		return o.res, o.err
	}
}

func (c *Checker) run(addr string, a model.MailAccount) (Result, error) {
	s, err := c.dial(addr, a.UseSSL)
	if err != nil {
		return Result{}, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	defer func() { _ = s.Logout() }()

	if err := s.Login(a.Login(), a.Password); err != nil {
		return Result{}, &AuthError{Username: a.Login(), Err: err}
	}
	n, err := s.SelectInbox()
	if err != nil {
		return Result{}, fmt.Errorf("selecting INBOX: %w", err)
	}
	return Result{Mailbox: "INBOX", Messages: n}, nil
}

// imapSession adapts imapclient.Client to session.
type imapSession struct {
	client *imapclient.Client
}

func dialIMAP(addr string, useTLS bool) (session, error) {
	var client *imapclient.Client
	var err error
	if useTLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, err
	}
	return &imapSession{client: client}, nil
}

func (s *imapSession) Login(username, password string) error {
	return s.client.Login(username, password).Wait()
}

func (s *imapSession) SelectInbox() (uint32, error) {
	data, err := s.client.Select("INBOX", nil).Wait()
	if err != nil {
		return 0, err
	}
	return data.NumMessages, nil
}

func (s *imapSession) Logout() error {
	if err := s.client.Logout().Wait(); err != nil {
		_ = s.client.Close()
		return err
	}
	return s.client.Close()
}
