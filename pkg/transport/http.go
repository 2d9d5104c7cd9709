package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
	"github.com/meterbridge/telemetry-go/pkg/serialization"
)

const contentType = "application/x-json-stream"

// Config configures an HTTPPublisher. EndpointURL and InstrumentationKey
// are required; everything else has a working default.
type Config struct {
	// EndpointURL is the full ingestion URL, e.g.
	// "https://dc.example.com/v2/track".
	EndpointURL        string
	InstrumentationKey string
	// TokenProvider enables bearer authentication when set; without it the
	// endpoint is used in key-only mode.
	TokenProvider TokenProvider
	// Client defaults to a pooled clean client.
	Client *http.Client
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// HTTPPublisher posts serialized batches to one ingestion endpoint.
// Endpoint and key validity are checked at construction; Publish itself
// never fails for remote-side reasons.
type HTTPPublisher struct {
	endpoint   string
	ikey       string
	serializer *serialization.Serializer
	client     *http.Client
	tokens     *tokenCache
	logger     *slog.Logger
}

// NewHTTPPublisher validates the configuration and returns a publisher.
func NewHTTPPublisher(cfg Config) (*HTTPPublisher, error) {
	if strings.TrimSpace(cfg.EndpointURL) == "" {
		return nil, ErrEmptyEndpoint
	}
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, cfg.EndpointURL)
	}
	if strings.TrimSpace(cfg.InstrumentationKey) == "" {
		return nil, ErrEmptyInstrumentKey
	}

	client := cfg.Client
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &HTTPPublisher{
		endpoint:   u.String(),
		ikey:       cfg.InstrumentationKey,
		serializer: serialization.NewSerializer(),
		client:     client,
		logger:     logger,
	}
	if cfg.TokenProvider != nil {
		p.tokens = newTokenCache(cfg.TokenProvider)
	}
	return p, nil
}

// Endpoint returns the validated ingestion URL.
func (p *HTTPPublisher) Endpoint() string { return p.endpoint }

// Publish serializes the batch, posts it, and maps the response. Duration
// covers authentication, send, and parse. The batch is submitted as one
// POST; chunking is the caller's responsibility.
func (p *HTTPPublisher) Publish(ctx context.Context, items []contracts.Telemetry, extraTags map[string]string) (res Result) {
	start := time.Now()
	res = Result{Time: start, ItemCount: len(items)}
	defer func() { res.Duration = time.Since(start) }()

	body, bodyIndex := p.encodeBatch(items, extraTags)
	if len(body) == 0 {
		// Every record was an unknown kind; there is nothing to send and
		// nothing the service could reject.
		res.Success = true
		return res
	}

	token := Token{}
	if p.tokens != nil {
		var err error
		token, err = p.tokens.Get(ctx)
		if err != nil {
			res.Err = fmt.Errorf("acquire token: %w", err)
			return res
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}
	req.Header.Set("Content-Type", contentType)
	if token.Value != "" {
		req.Header.Set("Authorization", "Bearer "+token.Value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// Covers connection failures and context cancellation.
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		res.StatusCode = resp.StatusCode
		res.Err = fmt.Errorf("read response: %w", err)
		return res
	}
	res.StatusCode = resp.StatusCode
	res.Response = string(raw)

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("telemetry publish rejected",
			"endpoint", p.endpoint, "status", resp.StatusCode, "items", len(items))
		return res
	}

	var backend backendResponse
	if err := json.Unmarshal(raw, &backend); err != nil {
		res.Err = fmt.Errorf("parse response: %w", err)
		return res
	}

	res.Success = backend.ItemsAccepted == backend.ItemsReceived && len(backend.Errors) == 0
	for _, itemErr := range backend.Errors {
		// The service indexes items by body position; map back to the
		// submitted batch, which may differ when unknown kinds were
		// skipped during serialization.
		if itemErr.Index >= 0 && itemErr.Index < len(bodyIndex) {
			itemErr.Index = bodyIndex[itemErr.Index]
		}
		res.ItemErrors = append(res.ItemErrors, itemErr)
	}
	if !res.Success {
		p.logger.Warn("telemetry publish partial failure",
			"endpoint", p.endpoint,
			"received", backend.ItemsReceived,
			"accepted", backend.ItemsAccepted,
			"errors", len(backend.Errors))
	}
	return res
}

// encodeBatch renders the newline-delimited batch body. bodyIndex maps each
// body line back to its position in items; records whose kind the
// serializer does not recognize contribute nothing.
func (p *HTTPPublisher) encodeBatch(items []contracts.Telemetry, extraTags map[string]string) ([]byte, []int) {
	enc := serialization.NewEncoder()
	bodyIndex := make([]int, 0, len(items))
	var buf bytes.Buffer
	for i, item := range items {
		enc.Reset()
		p.serializer.SerializeTo(enc, p.ikey, item, extraTags)
		if enc.Len() == 0 {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(enc.Bytes())
		bodyIndex = append(bodyIndex, i)
	}
	return buf.Bytes(), bodyIndex
}
