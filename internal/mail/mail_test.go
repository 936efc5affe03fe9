package mail

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenko/contacts_api/internal/tokens"
)

// silentSMTP accepts connections but never sends the greeting, so any dial
// against it blocks until the client gives up.
func silentSMTP(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			t.Cleanup(func() { conn.Close() })
		}
	}()
	return strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
}

func TestSend_ContextExpiryReleasesCaller(t *testing.T) {
	t.Parallel()

	issuer := tokens.NewIssuer(tokens.NewCodec([]byte("test-secret")))
	sender := NewSMTPSender(SMTPConfig{
		Host:   "127.0.0.1",
		Port:   silentSMTP(t),
		From:   "noreply@example.com",
		AppURL: "http://localhost:8000",
	}, issuer)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The delivery goroutine owns the connection; an expired context only
	// releases the caller.
	err := sender.SendVerification(ctx, "roybebru@gmail.com", "Roy")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
