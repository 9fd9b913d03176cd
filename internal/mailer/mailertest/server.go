// Package mailertest provides an in-process SMTP server for exercising the
// mail transport without a real relay.
package mailertest

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// Message is one envelope accepted by the server.
type Message struct {
	From string
	To   []string
	Data string
}

type Option func(*Server)

// RejectMessage makes the server answer the nth DATA transfer (1-based,
// counted across all sessions) with a permanent failure.
func RejectMessage(n int) Option {
	return func(s *Server) { s.rejectAt = n }
}

// RejectRecipient answers RCPT TO for addr with a permanent failure.
func RejectRecipient(addr string) Option {
	return func(s *Server) { s.rejectRcpt = addr }
}

// RequireAuth only accepts the given credentials. Without it any credentials
// are accepted.
func RequireAuth(user, pass string) Option {
	return func(s *Server) {
		s.authUser = user
		s.authPass = pass
		s.authRequired = true
	}
}

// AuthMechanisms sets the mechanisms advertised in the EHLO reply. The server
// understands PLAIN and LOGIN; the default is PLAIN. With no mechanisms the
// AUTH extension is not advertised at all.
func AuthMechanisms(mechs ...string) Option {
	return func(s *Server) { s.authMechs = mechs }
}

type Server struct {
	Host string
	Port int

	ln           net.Listener
	wg           sync.WaitGroup
	rejectAt     int
	rejectRcpt   string
	authMechs    []string
	authRequired bool
	authUser     string
	authPass     string

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	messages []Message
	sessions int
	dataSeen int
}

// NewServer listens on 127.0.0.1 with a random port and stops on test cleanup.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &Server{
		Host:      "127.0.0.1",
		Port:      ln.Addr().(*net.TCPAddr).Port,
		ln:        ln,
		conns:     make(map[net.Conn]struct{}),
		authMechs: []string{"PLAIN"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.sessions++
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
	r := bufio.NewReader(conn)
	reply := func(format string, args ...any) {
		fmt.Fprintf(conn, format+"\r\n", args...)
	}

	reply("220 localhost Test SMTP Service Ready")
	authenticated := false
	var current Message
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250-localhost Hello")
			if len(s.authMechs) > 0 {
				reply("250 AUTH %s", strings.Join(s.authMechs, " "))
			} else {
				reply("250 OK")
			}
		case strings.HasPrefix(cmd, "AUTH PLAIN"):
			if s.checkPlain(strings.TrimSpace(line[len("AUTH PLAIN"):])) {
				authenticated = true
				reply("235 2.7.0 Authentication successful")
			} else {
				reply("535 5.7.8 Authentication credentials invalid")
			}
		case strings.HasPrefix(cmd, "AUTH LOGIN"):
			reply("334 %s", base64.StdEncoding.EncodeToString([]byte("Username:")))
			user, ok := readBase64Line(r)
			if !ok {
				return
			}
			reply("334 %s", base64.StdEncoding.EncodeToString([]byte("Password:")))
			pass, ok := readBase64Line(r)
			if !ok {
				return
			}
			if s.checkCredentials(user, pass) {
				authenticated = true
				reply("235 2.7.0 Authentication successful")
			} else {
				reply("535 5.7.8 Authentication credentials invalid")
			}
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			if s.authRequired && !authenticated {
				reply("530 5.7.0 Authentication required")
				continue
			}
			current = Message{From: envelopeAddr(line[len("MAIL FROM:"):])}
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			addr := envelopeAddr(line[len("RCPT TO:"):])
			if s.rejectRcpt != "" && addr == s.rejectRcpt {
				reply("550 5.1.1 Recipient address rejected")
				continue
			}
			current.To = append(current.To, addr)
			reply("250 OK")
		case strings.HasPrefix(cmd, "DATA"):
			reply("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				dline, derr := r.ReadString('\n')
				if derr != nil {
					return
				}
				if strings.TrimRight(dline, "\r\n") == "." {
					break
				}
				b.WriteString(dline)
			}
			current.Data = b.String()

			s.mu.Lock()
			s.dataSeen++
			reject := s.rejectAt > 0 && s.dataSeen == s.rejectAt
			if !reject {
				s.messages = append(s.messages, current)
			}
			s.mu.Unlock()

			if reject {
				reply("554 5.7.1 Message rejected")
			} else {
				reply("250 OK: queued as %d", len(current.Data))
			}
			current = Message{}
		case strings.HasPrefix(cmd, "RSET"):
			current = Message{}
			reply("250 OK")
		case strings.HasPrefix(cmd, "QUIT"):
			reply("221 Bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func (s *Server) checkPlain(encoded string) bool {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	parts := strings.Split(string(raw), "\x00")
	if len(parts) != 3 {
		return false
	}
	return s.checkCredentials(parts[1], parts[2])
}

func (s *Server) checkCredentials(user, pass string) bool {
	if !s.authRequired {
		return true
	}
	return user == s.authUser && pass == s.authPass
}

func readBase64Line(r *bufio.Reader) (string, bool) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func envelopeAddr(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "<>")
}
