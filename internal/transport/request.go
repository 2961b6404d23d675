package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
	"time"
)

// Request describes one logical call. It must not be modified once Do starts.
type Request struct {
	Method string
	Path   string
	// Query is appended to Path. It is kept out of logs and observer labels.
	Query   url.Values
	Body    any
	Headers map[string]string
	// Timeout bounds each attempt; zero uses the client default.
	Timeout time.Duration
	// Token is attached as a bearer credential, or under TokenType when that
	// names a header other than "Bearer".
	Token     string
	TokenType string
	// JWT is the legacy signed token, sent under the JWT header when Token is empty.
	JWT string
}

// URL returns the request URL relative to baseURL.
func (r *Request) URL(baseURL string) string {
	if len(r.Query) == 0 {
		return baseURL + r.Path
	}
	sep := "?"
	if strings.Contains(r.Path, "?") {
		sep = "&"
	}
	return baseURL + r.Path + sep + r.Query.Encode()
}

// Route is Path without any query string.
func (r *Request) Route() string {
	route, _, _ := strings.Cut(r.Path, "?")
	return route
}

// Multipart reports whether the request body is a multipart form.
func (r *Request) Multipart() bool {
	_, ok := r.Body.(*Form)
	return ok
}

// Form is a multipart body. It is encoded afresh for every attempt.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	content         []byte
}

// NewForm returns an empty multipart form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain form value.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part.
func (f *Form) AddFile(field, filename string, content []byte) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

// Encode renders the form and returns it with its boundary content type.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", file.field, err)
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %s: %w", file.field, err)
		}
	}
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", field.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// encodeBody returns the attempt's body reader and the content type it implies.
// An empty content type means the caller's headers or the JSON default apply.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		return b.Encode()
	case string:
		return bytes.NewReader([]byte(b)), "", nil
	case []byte:
		return bytes.NewReader(b), "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(data), "", nil
	}
}

// Body is a parsed response body.
type Body struct {
	// Raw holds the response bytes as received.
	Raw []byte
	// Value is nil for an empty body, the decoded JSON value when Raw is
	// valid JSON, and the raw text otherwise.
	Value any
	// JSON reports whether Value was decoded from JSON.
	JSON bool
}

// Text returns the body as a string when it is one: either plain text or a JSON string.
func (b *Body) Text() (string, bool) {
	if b == nil {
		return "", false
	}
	s, ok := b.Value.(string)
	return s, ok
}

func parseBody(raw []byte) *Body {
	body := &Body{Raw: raw}
	if len(raw) == 0 {
		return body
	}
	if !json.Valid(raw) {
		body.Value = string(raw)
		return body
	}

	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		body.Value = string(raw)
		return body
	}
	body.Value = value
	body.JSON = true
	return body
}
