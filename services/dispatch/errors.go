package dispatch

import "fmt"

// InvalidSlotError reports an unrecognized slot name. Fail-fast, never
// retried.
type InvalidSlotError struct {
	Name string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalidSlot: unknown slot %q", e.Name)
}

// InfeasibleShiftError reports a required shift outside the slot's
// configured bounds. Callers treat it as a normal negative result and try
// the next candidate slot.
type InfeasibleShiftError struct {
	Slot          string
	RequiredShift int
	MaxShift      int
}

func (e *InfeasibleShiftError) Error() string {
	return fmt.Sprintf("infeasible: slot %s needs a %d minute shift, max is %d", e.Slot, e.RequiredShift, e.MaxShift)
}

// NegotiationResolvedError reports a response to a negotiation that already
// reached a terminal state.
type NegotiationResolvedError struct {
	ID     string
	Status string
}

func (e *NegotiationResolvedError) Error() string {
	return fmt.Sprintf("negotiation %s already resolved: %s", e.ID, e.Status)
}
