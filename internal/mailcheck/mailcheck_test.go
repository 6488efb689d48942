package mailcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/model"
)

type fakeSession struct {
	loginErr  error
	selectErr error
	messages  uint32
	user      string
	loggedOut bool
	block     chan struct{}
}

func (f *fakeSession) Login(username, password string) error {
	if f.block != nil {
		<-f.block
	}
	f.user = username
	return f.loginErr
}

func (f *fakeSession) SelectInbox() (uint32, error) { return f.messages, f.selectErr }

func (f *fakeSession) Logout() error {
	f.loggedOut = true
	return nil
}

func checkerWith(s *fakeSession, dialErr error) (*Checker, *[]string) {
	var dialed []string
	c := NewChecker(time.Second)
	c.dial = func(addr string, useTLS bool) (session, error) {
		mode := "starttls"
		if useTLS {
			mode = "tls"
		}
		dialed = append(dialed, addr+" "+mode)
		if dialErr != nil {
			return nil, dialErr
		}
		return s, nil
	}
	return c, &dialed
}

var account = model.MailAccount{
	Email:    "desk@example.com",
	IMAPHost: "imap.example.com",
	IMAPPort: 993,
	Password: "secret",
	UseSSL:   true,
}

func TestCheckSuccess(t *testing.T) {
	s := &fakeSession{messages: 42}
	c, dialed := checkerWith(s, nil)

	res, err := c.Check(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), res.Messages)
	assert.Equal(t, "INBOX", res.Mailbox)
	assert.Equal(t, []string{"imap.example.com:993 tls"}, *dialed)
	assert.Equal(t, "desk@example.com", s.user)
	assert.True(t, s.loggedOut)
}

func TestCheckUsesUsernameAndStartTLS(t *testing.T) {
	s := &fakeSession{}
	c, dialed := checkerWith(s, nil)
	a := account
	a.Username = "desk"
	a.UseSSL = false
	a.IMAPPort = 143

	_, err := c.Check(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "desk", s.user)
	assert.Equal(t, []string{"imap.example.com:143 starttls"}, *dialed)
}

func TestCheckLoginRejected(t *testing.T) {
	s := &fakeSession{loginErr: errors.New("NO [AUTHENTICATIONFAILED]")}
	c, _ := checkerWith(s, nil)

	_, err := c.Check(context.Background(), account)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.True(t, s.loggedOut)
}

func TestCheckDialFailure(t *testing.T) {
	c, _ := checkerWith(nil, errors.New("connection refused"))
	_, err := c.Check(context.Background(), account)
	require.Error(t, err)
	assert.False(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "imap.example.com:993")
}

func TestCheckInvalidAccount(t *testing.T) {
	c, dialed := checkerWith(&fakeSession{}, nil)
	_, err := c.Check(context.Background(), model.MailAccount{IMAPHost: "imap.example.com"})
	assert.Error(t, err)
	assert.Empty(t, *dialed)
}

func TestCheckTimesOut(t *testing.T) {
	s := &fakeSession{block: make(chan struct{})}
	defer close(s.block)
	c, _ := checkerWith(s, nil)
	c.timeout = 10 * time.Millisecond

	_, err := c.Check(context.Background(), account)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
