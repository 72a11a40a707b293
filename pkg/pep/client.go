// Package pep implements the Policy Enforcement Point client: a
// single-threaded-per-handle authorization pipeline that runs
// registered PIPs over a request, marshals and Base64-wraps it,
// POSTs it to a failover sequence of PDP endpoints, and runs
// registered Obligation Handlers over the decoded response.
package pep

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/enricovianello/pep-go/internal/metrics"
	"github.com/enricovianello/pep-go/pkg/base64x"
	"github.com/enricovianello/pep-go/pkg/buffer"
	"github.com/enricovianello/pep-go/pkg/hessian"
	"github.com/enricovianello/pep-go/pkg/peplog"
	"github.com/enricovianello/pep-go/pkg/xacml"
)

// Client is a single authorization handle: an ordered PIP chain, an
// ordered OH chain, an ordered endpoint list, a timeout, a transport
// and a logger. It is initialized once via New, used for any number of
// Authorize calls, and torn down once via Close. A single Client must
// not be shared across concurrent Authorize calls; create one Client
// per goroutine that needs one, or serialize access.
type Client struct {
	endpoints   []string
	pipsEnabled bool
	ohsEnabled  bool
	timeout     time.Duration

	pips         []PIP
	obligationHs []ObligationHandler

	transport Transport
	logger    *peplog.Logger
	metrics   *metrics.Collector
}

// New builds a Client from the given options, initializing every
// registered PIP and OH in insertion order. If any Init call fails,
// New unwinds by destroying the PIPs/OHs already initialized and
// returns the failure wrapped as CodeInitPIP or CodeInitOH.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logOpts := []peplog.Option{peplog.WithLevel(o.LogLevel)}
	if o.LogHandler != nil {
		logOpts = append(logOpts, o.LogHandler)
	} else if o.LogSink != nil {
		logOpts = append(logOpts, o.LogSink)
	}

	logger := peplog.New(logOpts...)

	collector, err := metrics.New(o.Registerer)
	if err != nil {
		logger.Warn("metrics registration failed, continuing without instrumentation", "err", err)
		collector = nil
	}

	c := &Client{
		endpoints:   append([]string(nil), o.Endpoints...),
		pipsEnabled: o.PIPsEnabled,
		ohsEnabled:  o.OHsEnabled,
		timeout:     o.Timeout,
		transport:   newFastHTTPTransport(o.TLS),
		logger:      logger,
		metrics:     collector,
	}

	for _, p := range o.pips {
		if err := p.Init(); err != nil {
			c.unwindPIPs(len(c.pips))
			return nil, newError(CodeInitPIP, fmt.Errorf("pip %q: %w", p.ID(), err))
		}
		c.pips = append(c.pips, p)
	}
	for _, h := range o.obligationHs {
		if err := h.Init(); err != nil {
			c.unwindOHs(len(c.obligationHs))
			c.unwindPIPs(len(c.pips))
			return nil, newError(CodeInitOH, fmt.Errorf("obligation handler %q: %w", h.ID(), err))
		}
		c.obligationHs = append(c.obligationHs, h)
	}

	return c, nil
}

func (c *Client) unwindPIPs(n int) {
	for i := 0; i < n; i++ {
		if err := c.pips[i].Destroy(); err != nil {
			c.logger.Warn("pip destroy failed during unwind", "pip", c.pips[i].ID(), "err", err)
		}
	}
}

func (c *Client) unwindOHs(n int) {
	for i := 0; i < n; i++ {
		if err := c.obligationHs[i].Destroy(); err != nil {
			c.logger.Warn("obligation handler destroy failed during unwind", "handler", c.obligationHs[i].ID(), "err", err)
		}
	}
}

// Close invokes Destroy exactly once per successfully initialized
// PIP and OH, in insertion order, then stops the logger's background
// writer. Destroy failures are logged at WARN but never abort
// teardown.
func (c *Client) Close() {
	for _, p := range c.pips {
		if err := p.Destroy(); err != nil {
			c.logger.Warn("pip destroy failed", "pip", p.ID(), "err", err)
		}
	}
	for _, h := range c.obligationHs {
		if err := h.Destroy(); err != nil {
			c.logger.Warn("obligation handler destroy failed", "handler", h.ID(), "err", err)
		}
	}
	c.logger.Close()
}

// Authorize runs the full pipeline: PIP chain, marshal, Base64 encode,
// failover POST loop, Base64 decode, unmarshal, OH chain. ctx is
// checked before each endpoint attempt; a request already in flight is
// not interrupted by ctx and is bounded only by the configured timeout.
func (c *Client) Authorize(ctx context.Context, req *xacml.Request) (*xacml.Response, error) {
	if req == nil {
		return nil, newError(CodeNullPointer, nil)
	}

	start := time.Now()
	defer func() { c.metrics.ObserveAuthorizeLatency(time.Since(start)) }()

	if c.pipsEnabled {
		for _, p := range c.pips {
			if err := p.Process(req); err != nil {
				c.metrics.IncPIPFailure()
				return nil, newError(CodeAuthzPIPProcess, fmt.Errorf("pip %q: %w", p.ID(), err))
			}
		}
	}

	requestValue, err := xacml.Marshal(req)
	if err != nil {
		return nil, newError(CodeMarshalling, err)
	}
	rawBuf, err := hessian.Marshal(requestValue)
	if err != nil {
		return nil, newError(CodeMarshalling, err)
	}
	rawBuf.Rewind()

	bodyBuf := buffer.New(rawBuf.Length()*4/3 + 16)
	base64x.EncodeLineSize(rawBuf, bodyBuf, base64x.DefaultLineSize)

	c.logger.Debug("authorize request encoded",
		"bytes", humanize.Bytes(uint64(bodyBuf.Length())),
		"endpoints", len(c.endpoints))

	resp, err := c.postWithFailover(ctx, bodyBuf)
	if err != nil {
		return nil, err
	}

	resp.Request = req

	if c.ohsEnabled {
		for _, h := range c.obligationHs {
			if err := h.Process(req, resp); err != nil {
				c.metrics.IncOHFailure()
				return nil, newError(CodeAuthzOHProcess, fmt.Errorf("obligation handler %q: %w", h.ID(), err))
			}
		}
	}

	return resp, nil
}

func (c *Client) postWithFailover(ctx context.Context, bodyBuf *buffer.Buffer) (*xacml.Response, error) {
	if len(c.endpoints) == 0 {
		return nil, newErrorf(CodeAuthzRequest, "no endpoints configured")
	}

	for _, url := range c.endpoints {
		if err := ctx.Err(); err != nil {
			return nil, newError(CodeAuthzRequest, err)
		}

		bodyBuf.Rewind()
		c.metrics.IncFailoverAttempt()

		status, respBody, err := c.transport.Post(url, bodyBuf.Bytes(), c.timeout)
		if err != nil {
			c.logger.Warn("endpoint request failed", "url", url, "err", err)
			continue
		}
		if status != 200 {
			c.logger.Warn("endpoint returned non-200 status", "url", url, "status", status)
			continue
		}

		respB64 := buffer.NewFromBytes(respBody)
		rawResp := buffer.New(len(respBody))
		base64x.Decode(respB64, rawResp)
		rawResp.Rewind()

		respValue, err := hessian.Unmarshal(rawResp)
		if err != nil {
			c.logger.Warn("endpoint response failed to unmarshal", "url", url, "err", err)
			continue
		}
		resp, err := xacml.UnmarshalResponse(respValue)
		if err != nil {
			c.logger.Warn("endpoint response failed xacml mapping", "url", url, "err", err)
			continue
		}

		return resp, nil
	}

	return nil, newErrorf(CodeAuthzRequest, "all %d endpoint(s) failed", len(c.endpoints))
}
