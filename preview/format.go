package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Response is what the HTTP layer writes for a result.
type Response struct {
	ContentType  string
	Body         []byte
	CacheControl string
}

// Formatter selects headers for a result and turns encoder output into a
// raw body.
type Formatter struct {
	cacheControl string
}

// NewFormatter creates a formatter advertising maxAge to client and
// shared caches. It should equal the cache TTL.
func NewFormatter(maxAge time.Duration) *Formatter {
	secs := int(maxAge / time.Second)
	if secs < 0 {
		secs = 0
	}
	s := strconv.Itoa(secs)
	return &Formatter{cacheControl: "public, max-age=" + s + ", s-maxage=" + s}
}

// CacheControl returns the Cache-Control value.
func (f *Formatter) CacheControl() string {
	return f.cacheControl
}

// Format builds the response for result.
func (f *Formatter) Format(result RenderResult) (Response, error) {
	body, err := Body(result.Format, result.Artifact)
	if err != nil {
		return Response{}, err
	}
	return Response{
		ContentType:  result.Format.ContentType(),
		Body:         body,
		CacheControl: f.cacheControl,
	}, nil
}

// Body converts an encoder artifact to raw response bytes. A data URL is
// decoded; PNG bodies must carry the PNG signature and SVG bodies must
// contain an svg element. Violations wrap ErrMalformedArtifact.
func Body(format Format, artifact []byte) ([]byte, error) {
	if bytes.HasPrefix(artifact, []byte("data:")) {
		decoded, err := decodeDataURL(artifact)
		if err != nil {
			return nil, err
		}
		artifact = decoded
	}

	switch format {
	case FormatPNG:
		if !bytes.HasPrefix(artifact, pngSignature) {
			return nil, fmt.Errorf("%w: png body lacks signature", ErrMalformedArtifact)
		}
	case FormatSVG:
		if !bytes.Contains(artifact, []byte("<svg")) {
			return nil, fmt.Errorf("%w: svg body has no svg element", ErrMalformedArtifact)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrMalformedArtifact, format)
	}
	return artifact, nil
}

// decodeDataURL decodes data:<mediatype>;base64,<payload>.
func decodeDataURL(u []byte) ([]byte, error) {
	header, payload, ok := bytes.Cut(u, []byte(","))
	if !ok {
		return nil, fmt.Errorf("%w: data url has no separator", ErrMalformedArtifact)
	}
	if !bytes.HasSuffix(header, []byte(";base64")) {
		return nil, fmt.Errorf("%w: data url is not base64", ErrMalformedArtifact)
	}

	out := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(out, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	return out[:n], nil
}
