package pep

import "github.com/enricovianello/pep-go/pkg/xacml"

// ObligationHandler is a post-processing step that may inspect or
// mutate the decoded response (for example, stripping or acting on
// obligations) before Authorize returns it to the caller.
type ObligationHandler interface {
	// ID names the handler for logging and diagnostics.
	ID() string
	// Init is invoked exactly once when the handler is registered with
	// a Client. A non-nil return prevents registration.
	Init() error
	// Process may mutate resp (and consult req) in place. A non-nil
	// return aborts the in-flight Authorize call with
	// CodeAuthzOHProcess.
	Process(req *xacml.Request, resp *xacml.Response) error
	// Destroy is invoked exactly once per successfully initialized
	// handler during client teardown.
	Destroy() error
}
