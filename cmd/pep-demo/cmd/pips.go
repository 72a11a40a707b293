package cmd

import (
	"time"

	"github.com/enricovianello/pep-go/pkg/xacml"
)

// environmentStamperPIP adds a fixed environment attribute to every
// request it sees, standing in for a real PIP that would look up
// request context (time of day, source network, etc.) from an
// external source.
type environmentStamperPIP struct{}

func (environmentStamperPIP) ID() string  { return "environment-stamper" }
func (environmentStamperPIP) Init() error { return nil }

func (environmentStamperPIP) Process(req *xacml.Request) error {
	env := req.Environment
	if env == nil {
		req.SetEnvironment(xacml.Environment{Category: "environment"})
		env = req.Environment
	}
	env.Attributes = append(env.Attributes, xacml.Attribute{
		ID:     "urn:oasis:names:tc:xacml:1.0:environment:current-dateTime",
		Values: []string{time.Now().UTC().Format(time.RFC3339)},
	})
	return nil
}

func (environmentStamperPIP) Destroy() error { return nil }

// loggingObligationHandler records the id of every obligation in the
// response, whatever the decision, instead of acting on it, standing in for a real
// handler that would, say, apply a data mask or write an audit trail.
type loggingObligationHandler struct {
	Seen []string
}

func (h *loggingObligationHandler) ID() string  { return "logging-obligation-handler" }
func (h *loggingObligationHandler) Init() error { return nil }

func (h *loggingObligationHandler) Process(_ *xacml.Request, resp *xacml.Response) error {
	for _, result := range resp.Results {
		for _, ob := range result.Obligations {
			h.Seen = append(h.Seen, ob.ID)
		}
	}
	return nil
}

func (h *loggingObligationHandler) Destroy() error { return nil }
