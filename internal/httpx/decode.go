package httpx

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/pokerjest/tvboxfeed/internal/jsonx"
)

type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyText
	BodyJSON
	BodyBinary
)

func (k BodyKind) String() string {
	switch k {
	case BodyText:
		return "text"
	case BodyJSON:
		return "json"
	case BodyBinary:
		return "binary"
	default:
		return "none"
	}
}

// Decoded is the interpreted response body: exactly one of text, JSON tree
// or bytes, or nothing.
type Decoded struct {
	kind BodyKind
	text string
	tree jsonx.Node
	data []byte
}

func (d Decoded) Kind() BodyKind { return d.kind }

func (d Decoded) Text() (string, bool) {
	return d.text, d.kind == BodyText
}

func (d Decoded) Tree() (jsonx.Node, bool) {
	return d.tree, d.kind == BodyJSON
}

func (d Decoded) Bytes() ([]byte, bool) {
	return d.data, d.kind == BodyBinary
}

func normalizeType(rt ResponseType) ResponseType {
	switch ResponseType(strings.ToLower(string(rt))) {
	case "", ResponseText:
		return ResponseText
	case ResponseJSON:
		return ResponseJSON
	case ResponseArrayBuffer:
		return ResponseArrayBuffer
	case ResponseBlob:
		return ResponseBlob
	default:
		return ResponseText
	}
}

// Decode interprets raw according to rt. It never fails: a JSON body that is
// blank or malformed decodes to BodyNone.
func Decode(raw []byte, rt ResponseType) Decoded {
	switch normalizeType(rt) {
	case ResponseJSON:
		if len(bytes.TrimSpace(raw)) == 0 {
			return Decoded{}
		}
		tree, err := jsonx.Parse(raw)
		if err != nil {
			return Decoded{}
		}
		return Decoded{kind: BodyJSON, tree: tree}
	case ResponseArrayBuffer, ResponseBlob:
		data := make([]byte, len(raw))
		copy(data, raw)
		return Decoded{kind: BodyBinary, data: data}
	case ResponseText:
		return Decoded{kind: BodyText, text: string(raw)}
	}
	return Decoded{}
}

var gzipMagic = []byte{0x1f, 0x8b}

// decompress undoes a Content-Encoding the transport left in place.
func decompress(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "br":
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return raw, fmt.Errorf("brotli: %w", err)
		}
		return out, nil
	case "gzip":
		// resty 已经解过 gzip 的情况下直接返回
		if !bytes.HasPrefix(raw, gzipMagic) {
			return raw, nil
		}
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return raw, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}
