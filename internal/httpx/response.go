package httpx

import (
	"net/http"

	"github.com/pokerjest/tvboxfeed/internal/jsonx"
)

// StatusTransportFailure marks a call that never produced an HTTP response.
const StatusTransportFailure = 0

// Response is the uniform outcome of a call. A transport failure (DNS,
// refused connection, timeout, cancellation) is reported as Status 0 with the
// failure message in StatusText; HTTP error statuses are ordinary responses.
type Response struct {
	Status     int
	StatusText string
	Headers    map[string][]string
	Text       string
	Body       Decoded
}

func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// JSON returns the structured body, parsing the raw text when the call was
// not made in JSON mode.
func (r *Response) JSON() (jsonx.Node, bool) {
	if r == nil {
		return jsonx.Node{}, false
	}
	if tree, ok := r.Body.Tree(); ok {
		return tree, true
	}
	if r.Text == "" {
		return jsonx.Node{}, false
	}
	n, err := jsonx.Parse([]byte(r.Text))
	if err != nil {
		return jsonx.Node{}, false
	}
	return n, true
}

// Header returns the first value of a response header.
func (r *Response) Header(key string) string {
	if r == nil {
		return ""
	}
	return http.Header(r.Headers).Get(key)
}

func transportFailure(err error) *Response {
	msg := "Network error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Response{
		Status:     StatusTransportFailure,
		StatusText: msg,
		Headers:    map[string][]string{},
	}
}
