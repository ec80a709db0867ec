// Package ftp bridges HTTP requests to a remote FTP content store.
//
// Every operation is session-scoped: it dials, authenticates, moves
// its bytes and closes the connection before returning. There is no
// pooling, no retry and no state shared between requests, so any
// number of instances can serve the same store without coordination.
package ftp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/marbeau17/cms-app/internal/charset"
	"github.com/marbeau17/cms-app/internal/logging"
	"github.com/marbeau17/cms-app/internal/metrics"
)

// downloadBlockSize is the granularity for streaming a remote object
// into memory. It bounds per-iteration reads, not total memory; the
// full payload is always assembled before decoding.
const downloadBlockSize = 8 * 1024

// TransferError wraps a session or protocol fault from a single
// bridge operation. The original fault stays reachable via Unwrap.
type TransferError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("ftp %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DirectoryEntry is one child in a directory listing.
type DirectoryEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
	MimeType string `json:"mimeType"`
}

// ReadResult is the decoded content of one remote file. Text content
// arrives as plain UTF-8; binary content as base64 with the encoding
// label "binary".
type ReadResult struct {
	Content          string `json:"content"`
	DetectedEncoding string `json:"detectedEncoding"`
	MimeType         string `json:"mimeType"`
}

// Bridge runs listing, read, write and upload operations against the
// remote store, anchoring every path under its configured root.
type Bridge struct {
	dialer Dialer
	root   string
}

// NewBridge creates a bridge over dialer with all paths rooted at
// root.
func NewBridge(dialer Dialer, root string) *Bridge {
	return &Bridge{dialer: dialer, root: root}
}

// List enumerates the immediate children of dir. Entries whose
// resolved name is empty or a dot segment are dropped. An empty
// directory yields an empty slice, not an error.
func (b *Bridge) List(ctx context.Context, dir string) ([]DirectoryEntry, error) {
	remote, err := Sanitize(dir, b.root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := b.listChildren(ctx, remote)
	if err != nil {
		metrics.RecordFTPOperation("list", time.Since(start), false)
		return nil, &TransferError{Op: "list", Path: dir, Err: err}
	}
	metrics.RecordFTPOperation("list", time.Since(start), true)

	entries := make([]DirectoryEntry, 0, len(raw))
	for _, e := range raw {
		name := e.Name
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		if name == "" || name == "." || name == ".." {
			continue
		}
		kind := "file"
		if e.Type == ftp.EntryTypeFolder {
			kind = "directory"
		}
		modified := ""
		if !e.Time.IsZero() {
			modified = e.Time.UTC().Format(time.RFC3339)
		}
		entries = append(entries, DirectoryEntry{
			Name:     name,
			Path:     strings.TrimRight(dir, "/") + "/" + name,
			Type:     kind,
			Size:     int64(e.Size),
			Modified: modified,
			MimeType: ContentType(name),
		})
	}
	return entries, nil
}

func (b *Bridge) listChildren(ctx context.Context, remote string) ([]*ftp.Entry, error) {
	sess, err := b.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Quit()
	return sess.List(remote)
}

// Read fetches the file at p and prepares it for the editor. Text
// files go through encoding resolution and come back as UTF-8 with
// the winning encoding label; binary files come back base64-encoded
// with the label "binary". Either the full payload is obtained or the
// operation fails; there are no partial reads.
func (b *Bridge) Read(ctx context.Context, p string) (*ReadResult, error) {
	remote, err := Sanitize(p, b.root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := b.fetch(ctx, remote)
	if err != nil {
		metrics.RecordFTPOperation("read", time.Since(start), false)
		return nil, &TransferError{Op: "read", Path: p, Err: err}
	}
	metrics.RecordFTPOperation("read", time.Since(start), true)
	metrics.RecordFTPDownload(int64(len(payload)))

	mimeType := ContentType(p)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if !IsTextPath(p) {
		return &ReadResult{
			Content:          base64.StdEncoding.EncodeToString(payload),
			DetectedEncoding: "binary",
			MimeType:         mimeType,
		}, nil
	}

	text, decision := charset.DecodeText(payload)
	metrics.RecordEncodingDecision(string(decision.Source))
	logging.Debug("text file decoded",
		zap.String("path", p),
		zap.String("encoding", decision.Encoding),
		zap.String("source", string(decision.Source)),
		zap.Int("bytes", len(payload)))
	return &ReadResult{
		Content:          text,
		DetectedEncoding: decision.Encoding,
		MimeType:         mimeType,
	}, nil
}

func (b *Bridge) fetch(ctx context.Context, remote string) ([]byte, error) {
	sess, err := b.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Quit()

	r, err := sess.Retr(remote)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var payload bytes.Buffer
	block := make([]byte, downloadBlockSize)
	for {
		n, err := r.Read(block)
		if n > 0 {
			payload.Write(block[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return payload.Bytes(), nil
}

// Write encodes content in the requested encoding and stores it at p.
// An empty encoding means utf-8. Encoding is strict: content with any
// character the target encoding cannot represent fails with an
// EncodeError before a connection is even opened.
func (b *Bridge) Write(ctx context.Context, p, content, encoding string) error {
	remote, err := Sanitize(p, b.root)
	if err != nil {
		return err
	}

	enc := encoding
	if enc == "" {
		enc = charset.DefaultEncoding
	}
	enc = charset.Canonicalize(enc)
	payload, err := charset.Encode(content, enc)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := b.store(ctx, remote, payload); err != nil {
		metrics.RecordFTPOperation("write", time.Since(start), false)
		return &TransferError{Op: "write", Path: p, Err: err}
	}
	metrics.RecordFTPOperation("write", time.Since(start), true)
	metrics.RecordFTPUpload(int64(len(payload)))

	logging.Info("file written",
		zap.String("path", p),
		zap.String("encoding", enc),
		zap.Int("bytes", len(payload)))
	return nil
}

// UploadBinary stores raw bytes unmodified as dir/filename and
// returns the logical path of the new file. No encoding logic runs.
func (b *Bridge) UploadBinary(ctx context.Context, dir, filename string, data []byte) (string, error) {
	logical := strings.TrimRight(dir, "/") + "/" + filename
	remote, err := Sanitize(logical, b.root)
	if err != nil {
		return "", err
	}

	start := time.Now()
	if err := b.store(ctx, remote, data); err != nil {
		metrics.RecordFTPOperation("upload", time.Since(start), false)
		return "", &TransferError{Op: "upload", Path: logical, Err: err}
	}
	metrics.RecordFTPOperation("upload", time.Since(start), true)
	metrics.RecordFTPUpload(int64(len(data)))

	logging.Info("binary uploaded",
		zap.String("path", logical),
		zap.Int("bytes", len(data)))
	return logical, nil
}

func (b *Bridge) store(ctx context.Context, remote string, payload []byte) error {
	sess, err := b.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Quit()
	return sess.Stor(remote, bytes.NewReader(payload))
}
