package common

import (
	"context"
	"fmt"

	"launchpad/crypto"
)

// Querier performs read-only queries against other contracts. Requests and
// responses are JSON encoded message values.
type Querier interface {
	QueryContract(ctx context.Context, contract crypto.Address, req, resp interface{}) error
}

// Policy decides what a failed delegate read means to the caller.
type Policy int

const (
	// FailOpen treats an unreadable delegate as "condition not met". Used for
	// advisory checks that must never abort the caller's message.
	FailOpen Policy = iota
	// FailClosed propagates the read failure as an error.
	FailClosed
)

func (p Policy) String() string {
	if p == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// Check reads one condition for subject at delegate.
type Check func(ctx context.Context, q Querier, delegate, subject crypto.Address) (bool, error)

// Predicate is a Check evaluated under an explicit failure policy.
type Predicate struct {
	Check  Check
	Policy Policy
}

// DelegateError reports a failed read against a delegate contract.
type DelegateError struct {
	Delegate crypto.Address
	Err      error
}

func (e *DelegateError) Error() string {
	return fmt.Sprintf("delegate %s: %v", e.Delegate, e.Err)
}

func (e *DelegateError) Unwrap() error { return e.Err }

// delegateFailure wraps err so that callers see a coded delegate failure,
// unless err already carries a more specific tag.
func delegateFailure(delegate crypto.Address, err error) error {
	wrapped := &DelegateError{Delegate: delegate, Err: err}
	if Code(err) != CodeInternal {
		return wrapped
	}
	return &CodedError{Code: CodeDelegateQuery, Err: wrapped}
}

// Eval runs the check. Under FailOpen a read failure yields false and no
// error; under FailClosed it is returned.
func (p Predicate) Eval(ctx context.Context, q Querier, delegate, subject crypto.Address) (bool, error) {
	if p.Check == nil {
		return false, nil
	}
	ok, err := p.Check(ctx, q, delegate, subject)
	if err != nil {
		if p.Policy == FailOpen {
			return false, nil
		}
		return false, delegateFailure(delegate, err)
	}
	return ok, nil
}

// Read performs one delegate query under policy. Under FailOpen a failure
// reports false and no error; otherwise true means resp was filled.
func Read(ctx context.Context, q Querier, policy Policy, delegate crypto.Address, req, resp interface{}) (bool, error) {
	if err := q.QueryContract(ctx, delegate, req, resp); err != nil {
		if policy == FailOpen {
			return false, nil
		}
		return false, delegateFailure(delegate, err)
	}
	return true, nil
}
