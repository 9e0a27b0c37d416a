package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotManager_ParseSlot(t *testing.T) {
	m := NewSlotManager()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical noon", input: "12PM", want: "12PM"},
		{name: "canonical evening", input: "6PM", want: "6PM"},
		{name: "24h alias noon", input: "12:00", want: "12PM"},
		{name: "24h alias late", input: "21:00", want: "9PM"},
		{name: "unknown slot", input: "10AM", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ParseSlot(tt.input)
			if tt.wantErr {
				var invalid *InvalidSlotError
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotManager_EventDuration(t *testing.T) {
	m := NewSlotManager()

	tests := []struct {
		name   string
		guests int
		want   int
	}{
		{name: "zero guests floors at minimum", guests: 0, want: 90},
		{name: "small party floors at minimum", guests: 5, want: 90},
		{name: "boundary exactly at floor", guests: 10, want: 90},
		{name: "mid-size party scales linearly", guests: 12, want: 96},
		{name: "large party", guests: 18, want: 114},
		{name: "boundary exactly at ceiling", guests: 20, want: 120},
		{name: "oversized party clamps at ceiling", guests: 40, want: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.EventDuration(tt.guests))
		})
	}
}

func TestSlotManager_EventDuration_Monotone(t *testing.T) {
	m := NewSlotManager()
	prev := 0
	for g := 0; g <= 50; g++ {
		d := m.EventDuration(g)
		assert.GreaterOrEqual(t, d, prev, "duration must never shrink as guests grow")
		assert.GreaterOrEqual(t, d, 90)
		assert.LessOrEqual(t, d, 120)
		prev = d
	}
}

func TestSlotManager_SlotStart(t *testing.T) {
	m := NewSlotManager()
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	start, err := m.SlotStart("3PM", day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC), start)

	_, err = m.SlotStart("4PM", day)
	assert.Error(t, err)
}

func TestSlotManager_AdjustedStart(t *testing.T) {
	m := NewSlotManager()
	day := func(h, min int) time.Time {
		return time.Date(2026, 4, 10, h, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name          string
		slot          string
		requiredAfter time.Time
		wantShift     int
		wantErr       bool
	}{
		{name: "no shift when base already works", slot: "6PM", requiredAfter: day(17, 0), wantShift: 0},
		{name: "exact boundary needs no shift", slot: "6PM", requiredAfter: day(18, 0), wantShift: 0},
		{name: "minimal forward shift", slot: "6PM", requiredAfter: day(18, 20), wantShift: 20},
		{name: "shift at the slot limit", slot: "6PM", requiredAfter: day(19, 0), wantShift: 60},
		{name: "shift beyond the slot limit", slot: "6PM", requiredAfter: day(19, 1), wantErr: true},
		{name: "late slot flexes only 30", slot: "9PM", requiredAfter: day(21, 31), wantErr: true},
		{name: "late slot within its bound", slot: "9PM", requiredAfter: day(21, 30), wantShift: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, shift, err := m.AdjustedStart(tt.slot, tt.requiredAfter)
			if tt.wantErr {
				var infeasible *InfeasibleShiftError
				require.ErrorAs(t, err, &infeasible)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShift, shift)
			assert.False(t, start.Before(tt.requiredAfter))
		})
	}
}

// A chef finishing a rush-hour event at 17:45 with a 20-minute raw drive
// needs 17:45 + 15 buffer + 30 adjusted travel + 30 setup = 19:00, which
// the 6PM slot absorbs with a 60-minute shift.
func TestSlotManager_CanAbsorbTravel_RushChain(t *testing.T) {
	m := NewSlotManager()
	prevEnd := time.Date(2026, 4, 10, 17, 45, 0, 0, time.UTC) // a Friday

	ok, adj, err := m.CanAbsorbTravel(prevEnd, 30, "6PM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 60, adj.ShiftMinutes)

	// The 9PM slot needs no shift at all for the same chain.
	ok, adj, err = m.CanAbsorbTravel(prevEnd, 30, "9PM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, adj.ShiftMinutes)
}

func TestSlotManager_CanAbsorbTravel_Infeasible(t *testing.T) {
	m := NewSlotManager()
	prevEnd := time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)

	// 18:30 + 15 + 60 + 30 = 20:15, which overruns the 6PM slot's +60 bound.
	ok, adj, err := m.CanAbsorbTravel(prevEnd, 60, "6PM")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, adj.ShiftMinutes)
}

func TestRoundShiftToStep(t *testing.T) {
	assert.Equal(t, 0, RoundShiftToStep(0))
	assert.Equal(t, 0, RoundShiftToStep(-10))
	assert.Equal(t, 30, RoundShiftToStep(1))
	assert.Equal(t, 30, RoundShiftToStep(30))
	assert.Equal(t, 60, RoundShiftToStep(31))
	assert.Equal(t, 60, RoundShiftToStep(60))
}
