package pep

import "github.com/enricovianello/pep-go/pkg/xacml"

// PIP is a Policy Information Point: a pre-processing step that may
// enrich or otherwise mutate the request before it is marshaled and
// sent to the PDP.
type PIP interface {
	// ID names the PIP for logging and diagnostics.
	ID() string
	// Init is invoked exactly once when the PIP is registered with a
	// Client. A non-nil return prevents registration.
	Init() error
	// Process may mutate req in place. A non-nil return aborts the
	// in-flight Authorize call with CodeAuthzPIPProcess.
	Process(req *xacml.Request) error
	// Destroy is invoked exactly once per successfully initialized PIP
	// during client teardown.
	Destroy() error
}
