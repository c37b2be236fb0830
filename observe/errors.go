package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")

	// ErrNilObserver is returned by MiddlewareFromObserver.
	ErrNilObserver = errors.New("observe: observer is nil")
)

var (
	tracingExporters = []string{"otlp", "stdout", "none", ""}
	metricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	logLevels        = []string{"debug", "info", "warn", "error", ""}
)

// RedactedFields are log field keys whose values are replaced before
// output. Preview payloads and integrity tokens are both listed since the
// content of a QR code can itself be a credential.
var RedactedFields = []string{
	"h",
	"token",
	"integrity_token",
	"secret",
	"api_key",
	"authorization",
	"content",
	"data",
}
