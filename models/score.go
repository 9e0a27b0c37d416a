package models

// ChefScore holds the per-factor breakdown for one candidate. It lives only
// for the request/response cycle and is never persisted.
type ChefScore struct {
	ChefID          string  `json:"chef_id"`
	ChefName        string  `json:"chef_name"`
	TravelScore     float64 `json:"travel_score"`
	SkillScore      float64 `json:"skill_score"`
	WorkloadScore   float64 `json:"workload_score"`
	HistoryScore    float64 `json:"history_score"`
	PreferenceBonus float64 `json:"preference_bonus"`
	TotalScore      float64 `json:"total_score"`
	TravelMinutes   int     `json:"travel_minutes"`
	// TravelUnresolved marks a candidate whose travel lookup was attempted
	// and exhausted every provider. Such a candidate must never be
	// auto-committed; the duration feeds customer billing.
	TravelUnresolved bool   `json:"travel_unresolved,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// Recommendation is the optimizer's answer for one booking.
type Recommendation struct {
	ChefID     string      `json:"chef_id,omitempty"` // Empty when unassignable
	Confidence float64     `json:"confidence"`
	Reason     string      `json:"reason"`
	Ranked     []ChefScore `json:"ranked,omitempty"` // Full ranked list for dispatcher override
}

// Assigned reports whether the recommendation names a chef.
func (r Recommendation) Assigned() bool {
	return r.ChefID != ""
}
