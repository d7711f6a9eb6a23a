package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/config"
	"github.com/spec-kit/lead-lens/internal/observability"
	"github.com/spec-kit/lead-lens/internal/soql"
)

const maxErrorBody = 4 << 10

// Client is the REST implementation of API.
type Client struct {
	http       *retryablehttp.Client
	tokens     TokenSource
	apiVersion string
	metrics    *observability.Metrics
}

// NewClient builds a REST client. Transient failures (connection errors, 429, 5xx) are
// retried with backoff up to cfg.RetryMax times.
func NewClient(cfg config.SalesforceConfig, tokens TokenSource, logger *zap.Logger, metrics *observability.Metrics) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = cfg.Timeout()
	rc.Logger = leveledLogger{logger.Sugar().Named("salesforce")}

	return &Client{
		http:       rc,
		tokens:     tokens,
		apiVersion: cfg.APIVersion,
		metrics:    metrics,
	}
}

// Query runs a SOQL statement.
func (c *Client) Query(ctx context.Context, q soql.Query) (*QueryResult, error) {
	var result QueryResult
	path := "/query?q=" + url.QueryEscape(q.String())
	err := c.do(ctx, "query", http.MethodGet, path, nil, &result)
	c.metrics.RecordExternalCall("query", err)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type compositeRequest struct {
	AllOrNone bool             `json:"allOrNone"`
	Records   []map[string]any `json:"records"`
}

// Update patches records in one composite call. allOrNone is false, so one rejected record
// does not block the others.
func (c *Client) Update(ctx context.Context, object string, records []Record) ([]SaveResult, error) {
	body := compositeRequest{Records: make([]map[string]any, 0, len(records))}
	for _, r := range records {
		rec := make(map[string]any, len(r.Fields)+2)
		for k, v := range r.Fields {
			rec[k] = v
		}
		rec["attributes"] = map[string]string{"type": object}
		rec["Id"] = r.ID
		body.Records = append(body.Records, rec)
	}

	var results []SaveResult
	err := c.do(ctx, "update", http.MethodPatch, "/composite/sobjects", body, &results)
	c.metrics.RecordExternalCall("update", err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Describe fetches an sObject describe.
func (c *Client) Describe(ctx context.Context, object string) (*DescribeResult, error) {
	if !soql.ValidIdentifier(object) {
		return nil, fmt.Errorf("invalid sObject name %q", object)
	}
	var result DescribeResult
	err := c.do(ctx, "describe", http.MethodGet, "/sobjects/"+object+"/describe", nil, &result)
	c.metrics.RecordExternalCall("describe", err)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	status, body, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		c.tokens.Invalidate()
		if status, body, err = c.send(ctx, method, path, payload); err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{Operation: op, StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return 0, nil, err
	}

	endpoint := strings.TrimRight(token.InstanceURL, "/") + "/services/data/" + c.apiVersion + path
	var body any
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
