package depscan

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Encoding headers recognized in packed plugin bodies. The header line
// declares how the remainder of the body is packed; the decoded form is what
// the mirror stores so the consuming client never re-decodes.
const (
	// headerGzipBase64 marks a body whose remainder is base64-encoded gzip
	headerGzipBase64 = "//bb@"

	// headerReversed marks a body whose remainder is base64 of the
	// byte-reversed source
	headerReversed = "//mm@"
)

// EncodingPlain means the body carried no encoding header
const EncodingPlain = "plain"

// Decode unpacks an encoded plugin body. It returns the decoded bytes, the
// encoding name, and a DecodeError when a recognized header's payload is
// corrupt. Bodies without a recognized header pass through unchanged.
func Decode(body []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(body, []byte(headerGzipBase64)):
		decoded, err := decodeGzipBase64(body[len(headerGzipBase64):])
		if err != nil {
			return nil, "gzip+base64", &DecodeError{Encoding: "gzip+base64", Err: err}
		}
		return decoded, "gzip+base64", nil

	case bytes.HasPrefix(body, []byte(headerReversed)):
		decoded, err := decodeReversed(body[len(headerReversed):])
		if err != nil {
			return nil, "reversed", &DecodeError{Encoding: "reversed", Err: err}
		}
		return decoded, "reversed", nil
	}

	return body, EncodingPlain, nil
}

func decodeGzipBase64(payload []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid gzip payload: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	decoded, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("truncated gzip payload: %w", err)
	}
	return decoded, nil
}

func decodeReversed(payload []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	out := make([]byte, len(raw))
	for i, b := range raw {
		out[len(raw)-1-i] = b
	}
	return out, nil
}
