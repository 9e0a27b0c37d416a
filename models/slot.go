package models

// SlotConfig describes one entry of the fixed daily slot grid and its
// adjustment bounds. Adjustments are signed minutes relative to the base
// time; MinAdjustMinutes <= 0 <= MaxAdjustMinutes always holds.
type SlotConfig struct {
	Name             string `bson:"name" json:"name"` // Canonical name, e.g. "3PM"
	BaseHour         int    `bson:"base_hour" json:"base_hour"`
	BaseMinute       int    `bson:"base_minute" json:"base_minute"`
	MinAdjustMinutes int    `bson:"min_adjust_minutes" json:"min_adjust_minutes"`
	MaxAdjustMinutes int    `bson:"max_adjust_minutes" json:"max_adjust_minutes"`
	MinEventMinutes  int    `bson:"min_event_minutes" json:"min_event_minutes"`
	MaxEventMinutes  int    `bson:"max_event_minutes" json:"max_event_minutes"`
}

// SlotAdjustment is the outcome of fitting a slot around a travel chain.
type SlotAdjustment struct {
	Slot         string `json:"slot"`
	ShiftMinutes int    `json:"shift_minutes"` // 0 when the base time already fits
}
