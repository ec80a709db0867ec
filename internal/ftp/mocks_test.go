package ftp

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/jlaffaye/ftp"
)

// fakeSession is an in-memory Session for bridge tests.
type fakeSession struct {
	entries []*ftp.Entry
	files   map[string][]byte
	stored  map[string][]byte

	listErr error
	retrErr error
	storErr error

	quitCalls int
}

func (f *fakeSession) List(path string) ([]*ftp.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeSession) Retr(path string) (io.ReadCloser, error) {
	if f.retrErr != nil {
		return nil, f.retrErr
	}
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("550 no such file")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeSession) Stor(path string, r io.Reader) error {
	if f.storErr != nil {
		return f.storErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.stored == nil {
		f.stored = make(map[string][]byte)
	}
	f.stored[path] = data
	return nil
}

func (f *fakeSession) Quit() error {
	f.quitCalls++
	return nil
}

// fakeDialer hands out one fakeSession and counts dials, so tests can
// assert that sessions are opened per operation and never before
// validation passes.
type fakeDialer struct {
	session *fakeSession
	dialErr error
	dials   int
}

func (d *fakeDialer) Dial(ctx context.Context) (Session, error) {
	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.session, nil
}
