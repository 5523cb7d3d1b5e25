package httpx

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/jsonx"
)

// FetchJSON sends req in JSON mode and returns the parsed root when the
// upstream answered 200 with a well-formed body. Every other outcome is
// logged and reported as false.
func (c *Client) FetchJSON(ctx context.Context, req Request) (jsonx.Node, bool) {
	req.ResponseType = ResponseJSON
	resp := c.Send(ctx, req)
	fields := log.Fields{"url": req.URL, "status": resp.Status}

	if resp.Status != http.StatusOK {
		c.log.WithFields(fields).WithField("reason", resp.StatusText).Debug("upstream unavailable")
		return jsonx.Node{}, false
	}
	root, ok := resp.JSON()
	if !ok {
		c.log.WithFields(fields).Debug("upstream body is not json")
		return jsonx.Node{}, false
	}
	return root, true
}

// Get is a GET with a Referer, the shape every fetcher needs.
func Get(url, referer string) Request {
	r := Request{Method: http.MethodGet, URL: url}
	if referer != "" {
		r.Headers = map[string]string{"Referer": referer}
	}
	return r
}
