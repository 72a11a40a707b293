package pep

import (
	"time"

	"github.com/valyala/fasthttp"
)

// Transport performs a single POST against one endpoint URL, returning
// the response body and HTTP status. Authorize treats any error or a
// non-200 status as a failover trigger, advancing to the next
// configured endpoint.
type Transport interface {
	Post(url string, body []byte, timeout time.Duration) (status int, respBody []byte, err error)
}

// fastHTTPTransport is the default Transport, built on
// github.com/valyala/fasthttp the way the rest of the dependency
// graph's HTTP surface is: a pooled *fasthttp.Client driving
// DoTimeout, with acquire/release of request and response objects
// back to their pools on every call.
type fastHTTPTransport struct {
	client *fasthttp.Client
	tls    TLSConfig
}

func newFastHTTPTransport(tls TLSConfig) *fastHTTPTransport {
	return &fastHTTPTransport{
		client: &fasthttp.Client{
			Name:                "pep-go",
			MaxIdleConnDuration: 30 * time.Second,
		},
		tls: tls,
	}
}

func (t *fastHTTPTransport) Post(url string, body []byte, timeout time.Duration) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetUserAgent(DefaultUserAgentPrefix + ClientVersion)
	req.Header.SetContentType("application/octet-stream")
	req.SetBody(body)

	if err := t.client.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, err
	}

	status := resp.StatusCode()
	respBody := make([]byte, len(resp.Body()))
	copy(respBody, resp.Body())
	return status, respBody, nil
}
