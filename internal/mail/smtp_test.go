package mail

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"recycle-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := string(buildMessage("Recycle", "no-reply@recycle.app", "a@b.c", "Reset your password", "<p>hi</p>", date))

	assert.Contains(t, raw, "From: Recycle <no-reply@recycle.app>\r\n")
	assert.Contains(t, raw, "To: a@b.c\r\n")
	assert.Contains(t, raw, "Subject: Reset your password\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>hi</p>"))
}

func TestSendWithoutHost(t *testing.T) {
	err := NewSMTPMailer(config.SMTPConfig{}).Send(context.Background(), "a@b.c", "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// fakeSMTP accepts one session and records the DATA payload.
func fakeSMTP(t *testing.T) (int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { conn.Write([]byte(s + "\r\n")) }

		write("220 fake ESMTP")
		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					got <- data.String()
					write("250 queued")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 fake")
			case cmd == "DATA":
				inData = true
				write("354 go ahead")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("250 ok")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, got
}

func TestSendDeliversMessage(t *testing.T) {
	port, got := fakeSMTP(t)
	mailer := NewSMTPMailer(config.SMTPConfig{
		Host:      "127.0.0.1",
		Port:      port,
		FromEmail: "no-reply@recycle.app",
		Timeout:   5 * time.Second,
	})

	err := mailer.Send(context.Background(), "a@b.c", "Hello", "<p>body</p>")
	require.NoError(t, err)

	select {
	case data := <-got:
		assert.Contains(t, data, "To: a@b.c")
		assert.Contains(t, data, "<p>body</p>")
	case <-time.After(5 * time.Second):
		t.Fatal("no message received on port " + strconv.Itoa(port))
	}
}
