package drill

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulties contains all valid difficulty values.
var ValidDifficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 10000
)

// Domain errors
var (
	ErrEmptyName         = errors.New("drillName is required")
	ErrNameTooLong       = errors.New("drillName cannot exceed 100 characters")
	ErrInvalidDifficulty = errors.New("Invalid difficulty. Must be easy, medium, or hard")
	ErrDescriptionLong   = errors.New("drillDescription cannot exceed 10000 characters")
	ErrInvalidVideoLink  = errors.New("video_link must be an http(s) URL")
	ErrNotFound          = errors.New("Drill not found")
)

// Drill is a reusable training exercise.
type Drill struct {
	ID          string    `json:"drillID"`
	Name        string    `json:"drillName"`
	Type        string    `json:"drillType"`
	Difficulty  string    `json:"difficulty"`
	Description string    `json:"drillDescription"`
	VideoLink   string    `json:"video_link"`
	Notes       string    `json:"notes"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks if the Drill has valid data.
// PRE: Drill struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Drill) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if d.Difficulty == "" {
		d.Difficulty = DifficultyMedium
	}
	if !isValidDifficulty(d.Difficulty) {
		return ErrInvalidDifficulty
	}
	if len(d.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if d.VideoLink != "" {
		u, err := url.Parse(d.VideoLink)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidVideoLink
		}
	}
	d.Name = name
	return nil
}

func isValidDifficulty(v string) bool {
	for _, d := range ValidDifficulties {
		if d == v {
			return true
		}
	}
	return false
}
