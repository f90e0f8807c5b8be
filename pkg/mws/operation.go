package mws

import "time"

// ContinuationSuffix marks the follow-up variant of a paginated operation.
const ContinuationSuffix = "ByNextToken"

// OperationDescriptor is the static metadata of one remote operation.
type OperationDescriptor struct {
	// Name is the name the descriptor was resolved under.
	Name string
	// Action is sent as the Action parameter; it carries the continuation
	// suffix for follow-up calls.
	Action  string
	Method  string
	Path    string
	Version string
	// ResultContainerKey and ResultItemKey locate the paginated collection
	// inside <Action>Result. Both are optional.
	ResultContainerKey string
	ResultItemKey      string
	// RecoveryInterval is how long the service needs to restore quota after
	// throttling. Zero means throttled calls are not retried.
	RecoveryInterval time.Duration
	// Upload marks operations that send a payload body (SubmitFeed).
	Upload bool
}

// IsContinuation reports whether the descriptor addresses a ByNextToken call.
func (d *OperationDescriptor) IsContinuation() bool {
	return len(d.Action) > len(ContinuationSuffix) &&
		d.Action[len(d.Action)-len(ContinuationSuffix):] == ContinuationSuffix
}

// BaseName strips the continuation suffix from the action.
func (d *OperationDescriptor) BaseName() string {
	if d.IsContinuation() {
		return d.Action[:len(d.Action)-len(ContinuationSuffix)]
	}

	return d.Action
}

// ResultKey is the element wrapping the operation's payload.
func (d *OperationDescriptor) ResultKey() string {
	return d.Action + "Result"
}

// Registry resolves operation names to descriptors.
type Registry interface {
	Resolve(name string) (*OperationDescriptor, error)
	Names() []string
}
