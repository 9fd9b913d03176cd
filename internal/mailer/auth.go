package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"slices"
	"strings"
)

var ErrPlaintextAuth = errors.New("smtp relay did not negotiate STARTTLS; refusing to send credentials in plaintext")

// relayAuth picks a mechanism from what the relay advertises, in the same
// order gomail does, and refuses to start unless the session is encrypted.
// Loopback relays are exempt when allowLoopback is set, as in net/smtp.
type relayAuth struct {
	username      string
	password      string
	host          string
	allowLoopback bool

	mech smtp.Auth
}

func (a *relayAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS && !(a.allowLoopback && isLoopback(server.Name)) {
		return "", nil, ErrPlaintextAuth
	}
	switch {
	case slices.Contains(server.Auth, "CRAM-MD5"):
		a.mech = smtp.CRAMMD5Auth(a.username, a.password)
	case slices.Contains(server.Auth, "PLAIN"):
		a.mech = smtp.PlainAuth("", a.username, a.password, a.host)
	case slices.Contains(server.Auth, "LOGIN"):
		a.mech = &loginAuth{username: a.username, password: a.password}
	default:
		return "", nil, fmt.Errorf("smtp relay offers no supported auth mechanism (advertised: %q)", strings.Join(server.Auth, " "))
	}
	return a.mech.Start(server)
}

func (a *relayAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	return a.mech.Next(fromServer, more)
}

type loginAuth struct {
	username string
	password string
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:":
		return []byte(a.username), nil
	case "password:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge: %q", fromServer)
	}
}

func isLoopback(name string) bool {
	if name == "localhost" {
		return true
	}
	ip := net.ParseIP(name)
	return ip != nil && ip.IsLoopback()
}
