package web

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var errUnsupportedEncoding = errors.New("unsupported content encoding")

// decodeBody wraps body according to the Content-Encoding header value.
// The returned close func releases decoder resources; it does not close body.
func decodeBody(encoding string, body io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, func() {}, nil

	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, func() { zr.Close() }, nil

	case "zstd":
		dec, err := zstd.NewReader(body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec, dec.Close, nil

	case "xz":
		xr, err := xz.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}
		return xr, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnsupportedEncoding, encoding)
	}
}
