package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync"
)

// FailureKind categorises a failed upload.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"
	FailureAuth      FailureKind = "auth"
	FailureTooLarge  FailureKind = "too_large"
	FailureServer    FailureKind = "server"
	FailureCancelled FailureKind = "cancelled"
)

var genericMessages = map[FailureKind]string{
	FailureNetwork:   "error uploading file",
	FailureAuth:      "not authorised to upload orders",
	FailureTooLarge:  "file is too large",
	FailureServer:    "upload failed",
	FailureCancelled: "upload cancelled",
}

// UploadError is returned by Transfer.Wait for every failed upload. Message
// carries the server's error text verbatim when the server supplied one.
type UploadError struct {
	Kind    FailureKind
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// TransferState is the lifecycle of an upload.
type TransferState string

const (
	StateIdle      TransferState = "idle"
	StateUploading TransferState = "uploading"
	StateDone      TransferState = "done"
	StateFailed    TransferState = "failed"
)

// Progress is a point-in-time view of a transfer.
type Progress struct {
	State   TransferState `json:"state"`
	Sent    int64         `json:"sent"`
	Total   int64         `json:"total"`
	Percent int           `json:"percent"`
}

// Client uploads order sheets to a running orderdesk server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client. token may be empty when auth is disabled.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

// Transfer is an in-flight upload.
type Transfer struct {
	cancel     context.CancelFunc
	cancelOnce sync.Once
	done       chan struct{}
	onProgress func(Progress)

	mu        sync.Mutex
	progress  Progress
	cancelled bool
	summary   Summary
	err       error
}

// Start sends the raw file and options in the background. onProgress, when
// set, is called as bytes are written and on every state change.
func (c *Client) Start(ctx context.Context, u Upload, opts Options, onProgress func(Progress)) *Transfer {
	ctx, cancel := context.WithCancel(ctx)
	t := &Transfer{
		cancel:     cancel,
		done:       make(chan struct{}),
		onProgress: onProgress,
		progress:   Progress{State: StateIdle},
	}
	go func() {
		defer close(t.done)
		defer cancel()
		sum, err := c.send(ctx, t, u, opts)
		t.finish(sum, err)
	}()
	return t
}

// Cancel aborts the transfer and resets progress to idle. Calling it more
// than once, or after completion, is a no-op.
func (t *Transfer) Cancel() {
	t.cancelOnce.Do(func() {
		t.mu.Lock()
		finished := t.progress.State == StateDone || t.progress.State == StateFailed
		if !finished {
			t.cancelled = true
			t.progress = Progress{State: StateIdle}
		}
		p := t.progress
		t.mu.Unlock()
		t.cancel()
		if !finished {
			t.notify(p)
		}
	})
}

// Wait blocks until the transfer ends and returns the server's summary.
func (t *Transfer) Wait() (Summary, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary, t.err
}

// Done is closed once the transfer has ended.
func (t *Transfer) Done() <-chan struct{} { return t.done }

// Progress returns the latest progress snapshot.
func (t *Transfer) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *Transfer) advance(sent, total int64) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	p := Progress{State: StateUploading, Sent: sent, Total: total}
	if total > 0 {
		p.Percent = int(sent * 100 / total)
	}
	t.progress = p
	t.mu.Unlock()
	t.notify(p)
}

func (t *Transfer) finish(sum Summary, err error) {
	t.mu.Lock()
	if t.cancelled {
		t.summary = Summary{}
		t.err = &UploadError{Kind: FailureCancelled, Message: genericMessages[FailureCancelled], Err: context.Canceled}
		t.mu.Unlock()
		return
	}
	t.summary, t.err = sum, err
	if err != nil {
		t.progress = Progress{State: StateFailed}
	} else {
		t.progress.State = StateDone
		t.progress.Percent = 100
	}
	p := t.progress
	t.mu.Unlock()
	t.notify(p)
}

func (t *Transfer) notify(p Progress) {
	if t.onProgress != nil {
		t.onProgress(p)
	}
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	t     *Transfer
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.t.advance(p.sent, p.total)
	}
	return n, err
}

func (c *Client) send(ctx context.Context, t *Transfer, u Upload, opts Options) (Summary, error) {
	body, contentType, err := encodeUpload(u, opts)
	if err != nil {
		return Summary{}, &UploadError{Kind: FailureNetwork, Message: genericMessages[FailureNetwork], Err: err}
	}
	total := int64(body.Len())
	reader := &progressReader{r: body, total: total, t: t}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders/upload-excel", reader)
	if err != nil {
		return Summary{}, &UploadError{Kind: FailureNetwork, Message: genericMessages[FailureNetwork], Err: err}
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	t.advance(0, total)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Summary{}, &UploadError{Kind: FailureCancelled, Message: genericMessages[FailureCancelled], Err: err}
		}
		return Summary{}, &UploadError{Kind: FailureNetwork, Message: genericMessages[FailureNetwork], Err: err}
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

func encodeUpload(u Upload, opts Options) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", path.Base(u.Filename))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(u.Data); err != nil {
		return nil, "", err
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("options", string(raw)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

type uploadResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeResponse(resp *http.Response) (Summary, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Summary{}, &UploadError{Kind: FailureNetwork, Status: resp.StatusCode, Message: genericMessages[FailureNetwork], Err: err}
	}
	var body uploadResponse
	jsonErr := json.Unmarshal(raw, &body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && jsonErr == nil && body.Success {
		var sum Summary
		if err := json.Unmarshal(body.Data, &sum); err != nil {
			return Summary{}, &UploadError{Kind: FailureServer, Status: resp.StatusCode, Message: genericMessages[FailureServer], Err: err}
		}
		return sum, nil
	}

	kind := kindForStatus(resp.StatusCode)
	msg := genericMessages[kind]
	if jsonErr == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return Summary{}, &UploadError{Kind: kind, Status: resp.StatusCode, Message: msg}
}

func kindForStatus(status int) FailureKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuth
	case http.StatusRequestEntityTooLarge:
		return FailureTooLarge
	default:
		return FailureServer
	}
}
