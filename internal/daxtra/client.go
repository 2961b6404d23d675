// Package daxtra is a client for the DaXtra CVX parsing API.
//
// Every operation mints a fresh signed token, sends the document through a
// retrying transport and validates the decoded payload. Failures surface as
// one of the typed errors in this package, *transport.Error for failures that
// never produced a response, or *signing.Error.
package daxtra

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/parser-service/internal/signing"
	"github.com/jonathan/parser-service/internal/transport"
)

// Remote endpoints, relative to the base URL.
const (
	pathFullProfile     = "/cvx/rest/api/v1/profile/full/json"
	pathPersonalProfile = "/cvx/rest/api/v1/profile/personal/json"
	pathData            = "/cvx/rest/api/v1/data"
	pathJobOrder        = "/cvx/rest/api/v1/joborder/json"
	pathConvert         = "/cvx/rest/api/v1/convert2html"
	pathConvertHQ       = "/cvx/rest/api/v1/convert2html_q"
)

const turboSuffix = "; -turbo"

// Options configures a Client.
type Options struct {
	BaseURL   string `validate:"required,url"`
	Account   string `validate:"required"`
	JWTSecret string `validate:"required"`
	// DefaultTimeout bounds each attempt; zero means transport.DefaultTimeout.
	DefaultTimeout time.Duration `validate:"gte=0"`
	// Turbo appends "; -turbo" to the account on every request.
	Turbo bool
	// TokenTTL is the lifetime of minted tokens; zero means signing.DefaultTTL.
	TokenTTL time.Duration `validate:"gte=0"`

	Logger           *slog.Logger       `validate:"-"`
	TransportOptions []transport.Option `validate:"-"`
}

// RequestOptions override per-call behaviour.
type RequestOptions struct {
	// Timeout bounds each attempt of this call.
	Timeout time.Duration
	// Token replaces the minted JWT with an explicit credential, sent as a
	// bearer token or under the TokenType header.
	Token     string
	TokenType string
}

// Client is safe for concurrent use. Its configuration is read-only after New.
type Client struct {
	transport *transport.Client
	signer    signing.Signer
	account   string
	secret    []byte
	ttl       time.Duration
	turbo     bool
	logger    *slog.Logger
}

// New validates opts and creates a client.
func New(opts Options) (*Client, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid daxtra client options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TokenTTL
	if ttl == 0 {
		ttl = signing.DefaultTTL
	}

	tOpts := []transport.Option{
		transport.WithTimeout(opts.DefaultTimeout),
		transport.WithErrorExtractor(errorExtractor{}),
		transport.WithLogger(logger),
	}
	tOpts = append(tOpts, opts.TransportOptions...)

	return &Client{
		transport: transport.New(opts.BaseURL, tOpts...),
		account:   opts.Account,
		secret:    []byte(opts.JWTSecret),
		ttl:       ttl,
		turbo:     opts.Turbo,
		logger:    logger,
	}, nil
}

// ParseFullResume parses a resume in a single request and returns the full candidate profile.
func (c *Client) ParseFullResume(ctx context.Context, file []byte, filename string, opts *RequestOptions) (*CandidateProfile, error) {
	body, err := c.upload(ctx, pathFullProfile, file, defaultName(filename, "resume"), opts)
	if err != nil {
		return nil, err
	}

	profile, err := decodeCandidate(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("full resume parsed", "filename", filename, "bytes", len(body.Raw))
	return profile, nil
}

// ParsePersonalThenFull parses a resume in two phases: the personal profile
// first, then the full profile redeemed with the continuation token phase one returned.
func (c *Client) ParsePersonalThenFull(ctx context.Context, file []byte, filename string, opts *RequestOptions) (*TwoPhaseResult, error) {
	jwt, err := c.mintToken()
	if err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodPost, pathPersonalProfile, jwt, opts)
	req.Body = map[string]string{
		"account": c.accountValue(),
		"file":    base64.StdEncoding.EncodeToString(file),
	}
	phase1, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	personal, err := decodeCandidate(phase1)
	if err != nil {
		return nil, err
	}

	token := personal.ContinuationToken()
	if token == "" {
		return nil, &NoContinuationTokenError{Body: phase1.Value}
	}
	c.logger.Debug("personal profile parsed, redeeming continuation token", "filename", filename)

	// Phase one's token may be close to expiry.
	jwt2, err := c.mintToken()
	if err != nil {
		return nil, err
	}

	req2 := c.newRequest(http.MethodGet, pathData, jwt2, opts)
	req2.Query = url.Values{"token": {token}}
	phase2, err := c.transport.Do(ctx, req2)
	if err != nil {
		return nil, err
	}

	full, err := decodeCandidate(phase2)
	if err != nil {
		return nil, err
	}
	return &TwoPhaseResult{Personal: personal, Full: full}, nil
}

// ParseJobOrder parses a job order document.
func (c *Client) ParseJobOrder(ctx context.Context, file []byte, filename string, opts *RequestOptions) (*VacancyProfile, error) {
	body, err := c.upload(ctx, pathJobOrder, file, defaultName(filename, "joborder"), opts)
	if err != nil {
		return nil, err
	}
	return decodeVacancy(body)
}

// ConvertToHTML converts a document to HTML. highQuality selects the slower,
// higher fidelity endpoint.
func (c *Client) ConvertToHTML(ctx context.Context, file []byte, highQuality bool, filename string, opts *RequestOptions) (string, error) {
	path := pathConvert
	if highQuality {
		path = pathConvertHQ
	}

	body, err := c.upload(ctx, path, file, defaultName(filename, "document"), opts)
	if err != nil {
		return "", err
	}

	html, ok := body.Text()
	if !ok {
		return "", &UnexpectedResponseTypeError{
			Operation: "convert2html",
			Expected:  "HTML string",
			Got:       describe(body.Value),
		}
	}
	return html, nil
}

// upload sends a multipart file+account form to path.
func (c *Client) upload(ctx context.Context, path string, file []byte, filename string, opts *RequestOptions) (*transport.Body, error) {
	jwt, err := c.mintToken()
	if err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodPost, path, jwt, opts)
	req.Body = transport.NewForm().
		AddFile("file", filename, file).
		AddField("account", c.accountValue())
	return c.transport.Do(ctx, req)
}

func (c *Client) newRequest(method, path, jwt string, opts *RequestOptions) *transport.Request {
	req := &transport.Request{Method: method, Path: path, JWT: jwt}
	if opts != nil {
		req.Timeout = opts.Timeout
		req.Token = opts.Token
		req.TokenType = opts.TokenType
	}
	return req
}

func (c *Client) mintToken() (string, error) {
	token, err := c.signer.Sign(c.account, c.secret, c.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to mint request token: %w", err)
	}
	return token, nil
}

func (c *Client) accountValue() string {
	if c.turbo {
		return c.account + turboSuffix
	}
	return c.account
}

func defaultName(filename, fallback string) string {
	if filename == "" {
		return fallback
	}
	return filename
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "empty body"
	case map[string]any:
		return "JSON object"
	case []any:
		return "JSON array"
	}
	return fmt.Sprintf("%T", v)
}
