package ftp

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jlaffaye/ftp"
)

// dialTimeout bounds the control-connection handshake.
const dialTimeout = 30 * time.Second

// Session is the slice of an authenticated FTP session the bridge
// needs. *ftp.ServerConn satisfies it through liveSession; tests
// substitute fakes.
type Session interface {
	List(path string) ([]*ftp.Entry, error)
	Retr(path string) (io.ReadCloser, error)
	Stor(path string, r io.Reader) error
	Quit() error
}

// Dialer opens a fresh authenticated session. One session serves
// exactly one bridge operation and is closed before it returns.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// ServerDialer connects to a fixed FTP server with fixed credentials.
type ServerDialer struct {
	addr string
	user string
	pass string
}

// NewServerDialer builds a dialer for host, which may carry an
// explicit port; without one the standard FTP port is used.
func NewServerDialer(host, user, pass string) *ServerDialer {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "21")
	}
	return &ServerDialer{addr: addr, user: user, pass: pass}
}

// Dial connects and authenticates. The caller owns the returned
// session and must Quit it.
func (d *ServerDialer) Dial(ctx context.Context) (Session, error) {
	conn, err := ftp.Dial(d.addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", d.addr, err)
	}
	if err := conn.Login(d.user, d.pass); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("login as %s: %w", d.user, err)
	}
	return &liveSession{conn: conn}, nil
}

// liveSession adapts *ftp.ServerConn to the Session interface; the
// adapter exists because Retr returns a concrete *ftp.Response.
type liveSession struct {
	conn *ftp.ServerConn
}

func (s *liveSession) List(path string) ([]*ftp.Entry, error) {
	return s.conn.List(path)
}

func (s *liveSession) Retr(path string) (io.ReadCloser, error) {
	return s.conn.Retr(path)
}

func (s *liveSession) Stor(path string, r io.Reader) error {
	return s.conn.Stor(path, r)
}

func (s *liveSession) Quit() error {
	return s.conn.Quit()
}
