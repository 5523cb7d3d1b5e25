// Package httpx is the shared HTTP client used by every upstream fetcher.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 15 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Linux; Android 16; MCE16 Build/BP3A.250905.014; ) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/123.0.0.0 Mobile Safari/537.36 EdgA/123.0.2420.102"
)

type Options struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	UserAgent      string
	Proxy          string
	// RateLimit is requests per second per host; 0 disables limiting.
	RateLimit float64
	RateBurst int
	// Brotli advertises br support and decodes br bodies.
	Brotli     bool
	Registerer prometheus.Registerer
	Logger     log.FieldLogger
}

// Client is safe for concurrent use; the underlying transport pools connections.
type Client struct {
	client    *resty.Client
	timeout   time.Duration
	userAgent string
	brotli    bool
	limiter   *hostLimiter
	metrics   *metrics
	log       log.FieldLogger
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	rc := resty.New().SetTransport(transport).SetLogger(opts.Logger)
	if opts.Proxy != "" {
		rc.SetProxy(opts.Proxy)
	}

	return &Client{
		client:    rc,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		brotli:    opts.Brotli,
		limiter:   newHostLimiter(opts.RateLimit, opts.RateBurst),
		metrics:   newMetrics(opts.Registerer),
		log:       opts.Logger.WithField("component", "httpx"),
	}
}

// Send executes req. It never returns an error: see Response for how
// failures are reported.
func (c *Client) Send(ctx context.Context, req Request) *Response {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(req.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return transportFailure(fmt.Errorf("invalid url %q", req.URL))
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.wait(ctx, u.Host); err != nil {
		return transportFailure(err)
	}

	r := c.client.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	ua := req.UserAgent
	if ua == "" {
		ua = c.userAgent
	}
	r.SetHeader("User-Agent", ua)
	if req.Cookie != "" {
		r.SetHeader("Cookie", req.Cookie)
	}
	if c.brotli && r.Header.Get("Accept-Encoding") == "" {
		r.SetHeader("Accept-Encoding", "gzip, br")
	}

	if method != http.MethodGet && method != http.MethodHead {
		if err := setBody(r, req.Data); err != nil {
			return transportFailure(err)
		}
	}

	start := time.Now()
	resp, err := r.Execute(method, req.URL)
	if err != nil {
		c.metrics.observe(u.Host, StatusTransportFailure, time.Since(start))
		c.log.WithFields(log.Fields{"url": req.URL, "method": method}).WithError(err).Debug("request failed")
		return transportFailure(unwrapURLError(err))
	}
	c.metrics.observe(u.Host, resp.StatusCode(), time.Since(start))

	return c.envelope(resp, req.ResponseType)
}

func (c *Client) envelope(resp *resty.Response, rt ResponseType) *Response {
	raw, err := decompress(resp.Header().Get("Content-Encoding"), resp.Body())
	if err != nil {
		c.log.WithError(err).WithField("url", resp.Request.URL).Warn("undecodable content encoding")
	}

	code := resp.StatusCode()
	statusText := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code)))
	if statusText == "" {
		statusText = "OK"
	}

	headers := make(map[string][]string, len(resp.Header()))
	for k, v := range resp.Header() {
		headers[k] = append([]string(nil), v...)
	}

	return &Response{
		Status:     code,
		StatusText: statusText,
		Headers:    headers,
		Text:       string(raw),
		Body:       Decode(raw, rt),
	}
}

func setBody(r *resty.Request, data any) error {
	contentType := func(ct string) {
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", ct)
		}
	}

	switch v := data.(type) {
	case nil:
		contentType("application/json")
		r.SetBody("")
	case string:
		contentType("text/plain; charset=utf-8")
		r.SetBody(v)
	case []byte:
		contentType("application/octet-stream")
		r.SetBody(v)
	case *os.File:
		contentType("application/octet-stream")
		r.SetBody(v)
	case io.Reader:
		contentType("application/octet-stream")
		r.SetBody(v)
	case map[string]string:
		r.SetFormData(v)
	case url.Values:
		r.SetFormDataFromValues(v)
	case []any:
		setMultipart(r, v)
	default:
		if setReflected(r, v) {
			return nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json body: %w", err)
		}
		contentType("application/json")
		r.SetBody(b)
	}
	return nil
}

// setReflected sends any other map kind as a form and any other slice or
// array as multipart. It reports false when v is neither.
func setReflected(r *resty.Request, v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		form := make(url.Values, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			form.Add(fmt.Sprint(iter.Key().Interface()), fmt.Sprint(iter.Value().Interface()))
		}
		r.SetFormDataFromValues(form)
		return true
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		setMultipart(r, items)
		return true
	}
	return false
}

func setMultipart(r *resty.Request, items []any) {
	fields := make(map[string]string)
	for i, item := range items {
		switch part := item.(type) {
		case *os.File:
			r.SetMultipartField(fmt.Sprintf("file%d", i), filepath.Base(part.Name()), "application/octet-stream", part)
		case []byte:
			name := fmt.Sprintf("file%d", i)
			r.SetMultipartField(name, name+".bin", "application/octet-stream", bytes.NewReader(part))
		default:
			fields[fmt.Sprintf("field%d", i)] = fmt.Sprint(part)
		}
	}
	r.SetMultipartFormData(fields)
}

// unwrapURLError drops the "Get \"...\":" prefix net/http adds.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
