package platform

import (
	"fmt"

	"costscope/internal/costs"
)

// FetchError reports a failed cost fetch for one scope and period. The
// failure is local to that cell: callers render a placeholder for it
// and continue with the rest of the hierarchy.
type FetchError struct {
	Scope  costs.Scope
	Period costs.Period
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching costs for %s (%s): status %d", e.Scope, e.Period, e.Status)
	}
	return fmt.Sprintf("fetching costs for %s (%s): %v", e.Scope, e.Period, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ListFetchError reports a failed team or project listing. Without a
// listing no hierarchy nodes can be built, so unlike FetchError this
// error escalates to the caller of the hierarchy root.
type ListFetchError struct {
	Resource string // "teams" or "projects"
	Err      error
}

func (e *ListFetchError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Resource, e.Err)
}

func (e *ListFetchError) Unwrap() error {
	return e.Err
}
