package drill_test

import (
	"errors"
	"strings"
	"testing"

	"clubhub/internal/domain/drill"
)

// TestDrill_Validate tests validation of Drill.
func TestDrill_Validate(t *testing.T) {
	tests := []struct {
		name    string
		drill   drill.Drill
		wantErr error
	}{
		{"valid", drill.Drill{Name: "Rondo", Difficulty: drill.DifficultyEasy}, nil},
		{"difficulty defaults", drill.Drill{Name: "Rondo"}, nil},
		{"valid video", drill.Drill{Name: "Rondo", VideoLink: "https://video.test/rondo"}, nil},
		{"empty name", drill.Drill{Name: " "}, drill.ErrEmptyName},
		{"long name", drill.Drill{Name: strings.Repeat("a", 101)}, drill.ErrNameTooLong},
		{"bad difficulty", drill.Drill{Name: "Rondo", Difficulty: "Hard"}, drill.ErrInvalidDifficulty},
		{"bad video", drill.Drill{Name: "Rondo", VideoLink: "ftp://video.test/rondo"}, drill.ErrInvalidVideoLink},
		{"long description", drill.Drill{Name: "Rondo", Description: strings.Repeat("d", 10001)}, drill.ErrDescriptionLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.drill
			if err := d.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDrill_ValidateDefaultsDifficulty(t *testing.T) {
	d := drill.Drill{Name: "  Shuttle runs "}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if d.Difficulty != drill.DifficultyMedium {
		t.Errorf("Difficulty = %q, want medium", d.Difficulty)
	}
	if d.Name != "Shuttle runs" {
		t.Errorf("Name = %q, want trimmed", d.Name)
	}
}
