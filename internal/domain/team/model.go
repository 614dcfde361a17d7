package team

import (
	"errors"
	"strings"
)

// Sports a team can play.
const (
	SportFootball   = "Football"
	SportBasketball = "Basketball"
	SportTennis     = "Tennis"
	SportOther      = "Other"
)

// ValidSports contains all valid sport values.
var ValidSports = []string{SportFootball, SportBasketball, SportTennis, SportOther}

// Domain errors
var (
	ErrEmptyName    = errors.New("Team name is required")
	ErrInvalidSport = errors.New("Invalid sport. Must be one of: Football, Basketball, Tennis, Other")
	ErrNegativeRank = errors.New("Team rank cannot be negative")
	ErrNotFound     = errors.New("Team not found")
	ErrCoachRole    = errors.New("Team coach must have the coach role")
)

// Team is a squad players belong to and schedules can reference.
type Team struct {
	ID      string `json:"teamID"`
	Name    string `json:"teamName"`
	Sport   string `json:"sport"`
	Rank    int    `json:"teamRank"`
	CoachID string `json:"coachID,omitempty"`
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	valid := false
	for _, s := range ValidSports {
		if t.Sport == s {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidSport
	}
	if t.Rank < 0 {
		return ErrNegativeRank
	}
	return nil
}
