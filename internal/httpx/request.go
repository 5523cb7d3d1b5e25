package httpx

import (
	"time"
)

// ResponseType selects how a response body is decoded.
type ResponseType string

const (
	ResponseText        ResponseType = "text"
	ResponseJSON        ResponseType = "json"
	ResponseArrayBuffer ResponseType = "arraybuffer"
	ResponseBlob        ResponseType = "blob"
)

// Request describes one outbound call. It is built fresh per call.
//
// Data is encoded according to its dynamic type:
//
//	nil                     empty body, application/json
//	string                  text/plain
//	[]byte                  application/octet-stream
//	*os.File, io.Reader     application/octet-stream stream
//	map[string]string       form-urlencoded
//	url.Values              form-urlencoded
//	[]any                   multipart; files and byte slices become parts, the rest form fields
//	anything else           JSON
//
// Data is ignored for GET and HEAD.
type Request struct {
	Method       string
	URL          string
	Headers      map[string]string
	Data         any
	Cookie       string
	UserAgent    string
	ResponseType ResponseType
	// Timeout overrides the client default for this call when non-zero.
	Timeout time.Duration
}
