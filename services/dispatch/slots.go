package dispatch

import (
	"errors"
	"math"
	"time"

	"chefdispatch/models"
)

// Fixed travel-chain constants. Both model physical equipment handling time
// independent of party size, so they are not configurable per booking.
const (
	BufferMinutes = 15 // Chef pack-up after the previous event
	SetupMinutes  = 30 // Mandatory pre-event staging

	MinEventMinutes = 90
	MaxEventMinutes = 120

	// AdjustmentStepMinutes is the discrete step customer-facing slot
	// offers are rounded to. Internal shift arithmetic stays in whole
	// minutes; callers needing discrete offers round up.
	AdjustmentStepMinutes = 30
)

// Canonical slot names.
const (
	SlotNoon = "12PM"
	Slot3PM  = "3PM"
	Slot6PM  = "6PM"
	Slot9PM  = "9PM"
)

// slotGrid is the fixed four-slot daily grid with per-slot adjustment
// bounds. The evening slots flex backward further; the late slot barely
// flexes forward so events still end at a workable hour.
var slotGrid = map[string]models.SlotConfig{
	SlotNoon: {Name: SlotNoon, BaseHour: 12, MinAdjustMinutes: -30, MaxAdjustMinutes: 60, MinEventMinutes: MinEventMinutes, MaxEventMinutes: MaxEventMinutes},
	Slot3PM:  {Name: Slot3PM, BaseHour: 15, MinAdjustMinutes: -30, MaxAdjustMinutes: 60, MinEventMinutes: MinEventMinutes, MaxEventMinutes: MaxEventMinutes},
	Slot6PM:  {Name: Slot6PM, BaseHour: 18, MinAdjustMinutes: -60, MaxAdjustMinutes: 60, MinEventMinutes: MinEventMinutes, MaxEventMinutes: MaxEventMinutes},
	Slot9PM:  {Name: Slot9PM, BaseHour: 21, MinAdjustMinutes: -60, MaxAdjustMinutes: 30, MinEventMinutes: MinEventMinutes, MaxEventMinutes: MaxEventMinutes},
}

// slotAliases accepts the 24h spellings callers also use.
var slotAliases = map[string]string{
	"12:00": SlotNoon,
	"15:00": Slot3PM,
	"18:00": Slot6PM,
	"21:00": Slot9PM,
}

// SlotManager owns the slot grid and its adjustment arithmetic.
type SlotManager struct{}

// NewSlotManager returns a SlotManager over the canonical four-slot grid.
func NewSlotManager() *SlotManager {
	return &SlotManager{}
}

// SlotNames returns the canonical slot names in daily order.
func (m *SlotManager) SlotNames() []string {
	return []string{SlotNoon, Slot3PM, Slot6PM, Slot9PM}
}

// ParseSlot normalizes a slot name, accepting canonical and 24h forms.
func (m *SlotManager) ParseSlot(name string) (string, error) {
	if _, ok := slotGrid[name]; ok {
		return name, nil
	}
	if canonical, ok := slotAliases[name]; ok {
		return canonical, nil
	}
	return "", &InvalidSlotError{Name: name}
}

// SlotConfig returns the configuration for a slot.
func (m *SlotManager) SlotConfig(name string) (models.SlotConfig, error) {
	canonical, err := m.ParseSlot(name)
	if err != nil {
		return models.SlotConfig{}, err
	}
	return slotGrid[canonical], nil
}

// EventDuration computes event length in minutes from the guest count:
// a 60-minute base plus 3 minutes per guest, clamped to [90, 120].
func (m *SlotManager) EventDuration(guestCount int) int {
	if guestCount <= 0 {
		return MinEventMinutes
	}
	minutes := 60 + guestCount*3
	if minutes < MinEventMinutes {
		return MinEventMinutes
	}
	if minutes > MaxEventMinutes {
		return MaxEventMinutes
	}
	return minutes
}

// SlotStart returns the slot's base start time on the given day.
func (m *SlotManager) SlotStart(name string, day time.Time) (time.Time, error) {
	cfg, err := m.SlotConfig(name)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), cfg.BaseHour, cfg.BaseMinute, 0, 0, day.Location()), nil
}

// AdjustedStart computes the minimal forward shift that makes the slot
// start at or after requiredStartAfter. The shift is whole minutes derived
// from the travel chain, not pre-rounded to 30-minute steps. Returns
// *InfeasibleShiftError when the required shift exceeds the slot's bound.
func (m *SlotManager) AdjustedStart(name string, requiredStartAfter time.Time) (time.Time, int, error) {
	cfg, err := m.SlotConfig(name)
	if err != nil {
		return time.Time{}, 0, err
	}

	base := time.Date(requiredStartAfter.Year(), requiredStartAfter.Month(), requiredStartAfter.Day(),
		cfg.BaseHour, cfg.BaseMinute, 0, 0, requiredStartAfter.Location())
	if !base.Before(requiredStartAfter) {
		return base, 0, nil
	}

	shift := int(math.Ceil(requiredStartAfter.Sub(base).Minutes()))
	if shift > cfg.MaxAdjustMinutes {
		return time.Time{}, 0, &InfeasibleShiftError{Slot: cfg.Name, RequiredShift: shift, MaxShift: cfg.MaxAdjustMinutes}
	}
	return base.Add(time.Duration(shift) * time.Minute), shift, nil
}

// CanAbsorbTravel checks whether a slot can absorb the full travel chain
// after a chef's previous booking: pack-up buffer, travel, then setup must
// all fit before the (possibly shifted) slot start.
func (m *SlotManager) CanAbsorbTravel(previousBookingEnd time.Time, travelMinutes int, targetSlot string) (bool, models.SlotAdjustment, error) {
	chain := time.Duration(BufferMinutes+travelMinutes+SetupMinutes) * time.Minute
	requiredStartAfter := previousBookingEnd.Add(chain)

	_, shift, err := m.AdjustedStart(targetSlot, requiredStartAfter)
	if err != nil {
		var infeasible *InfeasibleShiftError
		if errors.As(err, &infeasible) {
			return false, models.SlotAdjustment{}, nil
		}
		return false, models.SlotAdjustment{}, err
	}
	return true, models.SlotAdjustment{Slot: targetSlot, ShiftMinutes: shift}, nil
}

// RoundShiftToStep rounds a raw minute shift up to the discrete offer grid.
func RoundShiftToStep(shiftMinutes int) int {
	if shiftMinutes <= 0 {
		return 0
	}
	steps := (shiftMinutes + AdjustmentStepMinutes - 1) / AdjustmentStepMinutes
	return steps * AdjustmentStepMinutes
}
