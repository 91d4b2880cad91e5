package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
)

// Request describes one backend call. Body is JSON-encoded unless RawBody is
// set, in which case RawBody is sent as is with ContentType.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	Header      http.Header
}

// attempt is the encoded form of a Request. It is copied by value for the
// retry, so the retried flag belongs to exactly one logical request.
type attempt struct {
	method      string
	path        string
	url         string
	body        []byte
	contentType string
	header      http.Header
	retried     bool
}

func (c *Client) newAttempt(req Request) (attempt, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return attempt{}, err
	}

	a := attempt{
		method: method,
		path:   req.Path,
		url:    target,
		header: req.Header,
	}

	switch {
	case req.RawBody != nil:
		a.body = req.RawBody
		a.contentType = req.ContentType
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return attempt{}, fmt.Errorf("encode %s %s body: %w", method, req.Path, err)
		}
		a.body = data
		a.contentType = "application/json"
	}
	return a, nil
}

// resolve joins path (which may carry its own query) onto the base URL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if rel.IsAbs() {
		return "", fmt.Errorf("request path %q must be relative to the base url", path)
	}

	u := *c.baseURL
	u.Path = joinPath(c.baseURL.Path, rel.Path)

	q := rel.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func joinPath(base, p string) string {
	switch {
	case base == "" || base == "/":
		if p == "" || p[0] != '/' {
			return "/" + p
		}
		return p
	case base[len(base)-1] == '/' && p != "" && p[0] == '/':
		return base + p[1:]
	case base[len(base)-1] != '/' && (p == "" || p[0] != '/'):
		return base + "/" + p
	default:
		return base + p
	}
}

type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// encode renders the form once so that a retried request resends the same bytes.
func (m Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.FieldName, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.FieldName, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
