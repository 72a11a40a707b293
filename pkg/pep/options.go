package pep

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/enricovianello/pep-go/pkg/peplog"
)

// DefaultTimeout is the request timeout applied when no WithTimeout
// option is given.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgentPrefix is prefixed to the client version to build
// the User-Agent header sent with every PDP request.
const DefaultUserAgentPrefix = "PEP-Go/"

// ClientVersion is reported in the User-Agent header.
const ClientVersion = "1.0.0"

// TLSConfig carries the three TLS-related options through to the
// transport unmodified; their exact transport behavior is left
// implementation-defined (see DESIGN.md).
type TLSConfig struct {
	ClientCert   string
	ServerCAPath string
	ServerCert   string
}

// Options collects every knob a Client can be configured with, built
// via functional Option values so that
// New(WithEndpoint(...), WithTimeout(...), ...) mirrors a
// "configure then use" lifecycle without a separate mutable setter API.
type Options struct {
	Endpoints    []string
	PIPsEnabled  bool
	OHsEnabled   bool
	Timeout      time.Duration
	LogLevel     peplog.Level
	LogSink      peplog.Option
	LogHandler   peplog.Option
	TLS          TLSConfig
	Registerer   prometheus.Registerer
	pips         []PIP
	obligationHs []ObligationHandler
}

// Option configures an Options value. Unknown or ill-typed options
// have no Go analogue (the compiler rejects them at the call site).
// New does not validate option values, so it never returns
// CodeOptionInvalid; that code stays in the taxonomy for parity only.
type Option func(*Options)

// WithEndpoint appends a PDP endpoint URL to the failover list, in the
// order given, corresponding to repeated ENDPOINT_URL options.
func WithEndpoint(url string) Option {
	return func(o *Options) { o.Endpoints = append(o.Endpoints, url) }
}

// WithPIPsEnabled corresponds to ENABLE_PIPS.
func WithPIPsEnabled(enabled bool) Option {
	return func(o *Options) { o.PIPsEnabled = enabled }
}

// WithOHsEnabled corresponds to ENABLE_OBLIGATIONHANDLERS.
func WithOHsEnabled(enabled bool) Option {
	return func(o *Options) { o.OHsEnabled = enabled }
}

// WithTimeout corresponds to ENDPOINT_TIMEOUT.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithLogLevel corresponds to LOG_LEVEL.
func WithLogLevel(level peplog.Level) Option {
	return func(o *Options) { o.LogLevel = level }
}

// WithLogWriter corresponds to LOG_OUT.
func WithLogWriter(sink io.Writer) Option {
	return func(o *Options) { o.LogSink = peplog.WithSink(sink) }
}

// WithLogHandler corresponds to LOG_HANDLER.
func WithLogHandler(handler func(level peplog.Level, msg string, args ...any)) Option {
	return func(o *Options) { o.LogHandler = peplog.WithHandlerCallback(handler) }
}

// WithClientCert corresponds to ENDPOINT_CLIENT_CERT.
func WithClientCert(path string) Option {
	return func(o *Options) { o.TLS.ClientCert = path }
}

// WithServerCAPath corresponds to ENDPOINT_SERVER_CAPATH.
func WithServerCAPath(path string) Option {
	return func(o *Options) { o.TLS.ServerCAPath = path }
}

// WithServerCert corresponds to ENDPOINT_SERVER_CERT.
func WithServerCert(path string) Option {
	return func(o *Options) { o.TLS.ServerCert = path }
}

// WithMetricsRegisterer registers the client's prometheus collectors
// against reg instead of leaving metrics unregistered.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registerer = reg }
}

// WithPIP registers a PIP, invoked during New in insertion order, the
// Go analogue of the original's add_pip.
func WithPIP(p PIP) Option {
	return func(o *Options) { o.pips = append(o.pips, p) }
}

// WithObligationHandler registers an OH, invoked during New in
// insertion order, the Go analogue of the original's
// add_obligation_handler.
func WithObligationHandler(h ObligationHandler) Option {
	return func(o *Options) { o.obligationHs = append(o.obligationHs, h) }
}

func defaultOptions() *Options {
	return &Options{
		PIPsEnabled: true,
		OHsEnabled:  true,
		Timeout:     DefaultTimeout,
		LogLevel:    peplog.LevelWarn,
	}
}
