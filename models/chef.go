package models

// Chef skill levels, ordered junior < intermediate < senior < executive.
const (
	SkillJunior       = "junior"
	SkillIntermediate = "intermediate"
	SkillSenior       = "senior"
	SkillExecutive    = "executive"
)

// SkillRank maps a skill level to its ordinal position.
var SkillRank = map[string]int{
	SkillJunior:       0,
	SkillIntermediate: 1,
	SkillSenior:       2,
	SkillExecutive:    3,
}

// ChefInfo is a read-only roster snapshot used for one scheduling decision.
type ChefInfo struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	SkillLevel  string    `bson:"skill_level" json:"skill_level"`
	MaxGuests   int       `bson:"max_guests" json:"max_guests"`
	HomeGeo     GeoPoint  `bson:"home_geo" json:"home_geo"`
	CurrentGeo  *GeoPoint `bson:"current_geo,omitempty" json:"current_geo,omitempty"` // Last known location, if reported
	Available   bool      `bson:"available" json:"available"`
	LeaveDates  []string  `bson:"leave_dates,omitempty" json:"leave_dates,omitempty"` // "YYYY-MM-DD" entries
	Specialties []string  `bson:"specialties,omitempty" json:"specialties,omitempty"`
	Rating      float64   `bson:"rating" json:"rating"`
}

// DepartureGeo returns the chef's current location when known, home otherwise.
func (c ChefInfo) DepartureGeo() GeoPoint {
	if c.CurrentGeo != nil && c.CurrentGeo.Valid() {
		return *c.CurrentGeo
	}
	return c.HomeGeo
}

// OnLeave reports whether the chef has leave recorded for the given date.
func (c ChefInfo) OnLeave(date string) bool {
	for _, d := range c.LeaveDates {
		if d == date {
			return true
		}
	}
	return false
}
