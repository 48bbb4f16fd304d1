package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/intelliquiz/iqclient/httpx"
)

const pdfType = "application/pdf"

// Upload is a resource file to send. Progress, when set, receives whole
// percentages (rounded down) of the file read into the request body. The
// HTTP client buffers multipart bodies, so 100 means the file is buffered,
// not that the server has received it.
type Upload struct {
	FileName string
	Content  io.Reader
	Topic    string
	Progress func(percent int)
}

// UploadResource sends a PDF as multipart form data. The type is detected
// from the content, not the file name.
func (c *Client) UploadResource(ctx context.Context, up Upload) (Message, error) {
	if up.Content == nil {
		return Message{}, ErrNotPDF
	}
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return Message{}, fmt.Errorf("api: read upload: %w", err)
	}
	if len(data) == 0 || http.DetectContentType(data) != pdfType {
		return Message{}, ErrNotPDF
	}

	name := filepath.Base(up.FileName)
	if name == "." || name == string(filepath.Separator) {
		name = "resource.pdf"
	}
	var body io.Reader = bytes.NewReader(data)
	if up.Progress != nil {
		body = &progressReader{r: body, total: int64(len(data)), report: up.Progress, last: -1}
	}
	values := map[string]string{}
	if up.Topic != "" {
		values["topic"] = up.Topic
	}

	var out Message
	if _, err := c.http.Post(ctx, "/resources/upload", nil, &out, httpx.WithMultipart("file", name, body, values)); err != nil {
		return Message{}, fmt.Errorf("api: upload resource: %w", err)
	}
	return out, nil
}

// ListResources returns the resources uploaded by the session's user.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	return c.resources(ctx, "/resources/list")
}

// AllResources returns every resource; admin only on the server.
func (c *Client) AllResources(ctx context.Context) ([]Resource, error) {
	return c.resources(ctx, "/resources/all")
}

func (c *Client) resources(ctx context.Context, path string) ([]Resource, error) {
	var out []Resource
	if _, err := c.http.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("api: %s: %w", path, err)
	}
	return out, nil
}

func (c *Client) DeleteResource(ctx context.Context, id int64) (Message, error) {
	if id <= 0 {
		return Message{}, errors.New("api: resource id must be positive")
	}
	var out Message
	if _, err := c.http.Delete(ctx, "/resources/"+formatID(id), &out); err != nil {
		return Message{}, fmt.Errorf("api: delete resource: %w", err)
	}
	return out, nil
}

type progressReader struct {
	mu     sync.Mutex
	r      io.Reader
	read   int64
	total  int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.mu.Lock()
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	changed := pct != p.last
	p.last = pct
	p.mu.Unlock()
	if changed {
		p.report(pct)
	}
	return n, err
}
