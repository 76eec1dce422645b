package smtp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/webcore/mail"
)

// miniSMTPServer is a minimal plain-text SMTP server for testing
type miniSMTPServer struct {
	listener   net.Listener
	rejectRcpt bool

	mx       sync.Mutex
	messages []string
}

func startMiniSMTPServer(t *testing.T, rejectRcpt bool) *miniSMTPServer {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to start SMTP server")

	s := &miniSMTPServer{listener: listener, rejectRcpt: rejectRcpt}
	go s.serve()
	t.Cleanup(func() { listener.Close() })

	return s
}

func (s *miniSMTPServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *miniSMTPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // listener closed
		}
		go func() {
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *miniSMTPServer) handle(conn net.Conn) {
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	reply := func(line string) {
		writer.WriteString(line + "\r\n")
		writer.Flush()
	}

	reply("220 localhost ESMTP Test Server")

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250-SIZE 10240000")
			reply("250 8BITMIME")
		case strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			if s.rejectRcpt {
				reply("550 mailbox unavailable")
				continue
			}
			reply("250 OK")
		case cmd == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var msg strings.Builder
			for {
				l, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimRight(l, "\r\n") == "." {
					break
				}
				msg.WriteString(l)
			}
			s.mx.Lock()
			s.messages = append(s.messages, msg.String())
			s.mx.Unlock()
			reply("250 OK")
		case cmd == "RSET", cmd == "NOOP":
			reply("250 OK")
		case cmd == "QUIT":
			reply("221 localhost closing connection")
			return
		default:
			reply("500 Syntax error")
		}
	}
}

func (s *miniSMTPServer) received() []string {
	s.mx.Lock()
	defer s.mx.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

func TestSender_MiniSMTPServer_Success(t *testing.T) {
	server := startMiniSMTPServer(t, false)

	sender := NewSender(Config{
		Host:    "127.0.0.1",
		Port:    server.port(),
		From:    "noreply@yourapp.com",
		Timeout: 5 * time.Second,
	})
	defer sender.Close()

	err := sender.Send(context.Background(), mail.Message{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Text:    "Test Body",
		HTML:    "<p>Test Body</p>",
	})
	require.NoError(t, err)

	messages := server.received()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Subject: Test Subject")
	assert.Contains(t, messages[0], "recipient@example.com")
	assert.Contains(t, messages[0], "Test Body")
}

func TestSender_MiniSMTPServer_RecipientRejected(t *testing.T) {
	server := startMiniSMTPServer(t, true)

	sender := NewSender(Config{
		Host:    "127.0.0.1",
		Port:    server.port(),
		From:    "noreply@yourapp.com",
		Timeout: 5 * time.Second,
	})

	err := sender.Send(context.Background(), mail.Message{To: "missing@example.com", Text: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
	assert.Empty(t, server.received())
}

func TestSender_ServerNotRunning(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	sender := NewSender(Config{
		Host:    "127.0.0.1",
		Port:    port,
		From:    "noreply@yourapp.com",
		Timeout: time.Second,
	})

	err = sender.Send(context.Background(), mail.Message{To: "recipient@example.com", Text: "hi"})
	assert.Error(t, err)
}

func TestSender_ContextCanceled(t *testing.T) {
	server := startMiniSMTPServer(t, false)

	sender := NewSender(Config{
		Host: "127.0.0.1",
		Port: server.port(),
		From: "noreply@yourapp.com",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, mail.Message{To: "recipient@example.com", Text: "hi"})
	assert.Error(t, err)
}
