package travel

import "fmt"

// ProviderError wraps a single provider failure in the failsafe chain.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// EscalateToHumanError is the terminal failure of travel-time resolution.
// The resolved duration feeds a customer-facing travel fee, so once every
// provider tier is exhausted the core refuses to invent an estimate and a
// dispatcher must supply one.
type EscalateToHumanError struct {
	Attempts []error
}

func (e *EscalateToHumanError) Error() string {
	return fmt.Sprintf("travel time unresolvable after %d provider attempts; human estimate required", len(e.Attempts))
}
