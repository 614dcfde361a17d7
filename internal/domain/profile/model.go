package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clubhub/internal/domain/account"
)

// Domain errors
var (
	ErrNoFields      = errors.New("No valid fields to update")
	ErrUnknownField  = errors.New("Unknown profile field")
	ErrInvalidNumber = errors.New("must be a non-negative number")
	ErrInvalidDate   = errors.New("must be a date in YYYY-MM-DD format")
	ErrInvalidText   = errors.New("must be text")
	ErrContractRange = errors.New("contractEnd must not be before contractStart")
	ErrConfirmDelete = errors.New(`Type "DELETE" to confirm account deletion`)
)

// DeleteConfirmation is the literal a user must send to delete their account.
const DeleteConfirmation = "DELETE"

// FieldKind describes how a role-table column is validated.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindInteger
	KindDate
	KindTeamRef // team ID; "" clears the reference
)

// roleTables maps a role to its detail table and editable columns.
var roleTables = map[string]struct {
	Table   string
	Columns map[string]FieldKind
}{
	account.RolePlayer: {
		Table: "players",
		Columns: map[string]FieldKind{
			"emergencyContact": KindText,
			"playerHeight":     KindNumber,
			"playerWeight":     KindNumber,
			"sport":            KindText,
			"teamID":           KindTeamRef,
			"position":         KindText,
			"joinDate":         KindDate,
			"contractStart":    KindDate,
			"contractEnd":      KindDate,
		},
	},
	account.RoleTrainingManagement: {
		Table: "trainingManagement",
		Columns: map[string]FieldKind{
			"specialization":  KindText,
			"jobTitle":        KindText,
			"experienceLevel": KindText,
		},
	},
	account.RoleMedicalStaff: {
		Table: "medicalStaff",
		Columns: map[string]FieldKind{
			"major":          KindText,
			"specialization": KindText,
			"yearsOfExp":     KindInteger,
		},
	},
	account.RoleAdmin: {
		Table:   "admins",
		Columns: map[string]FieldKind{},
	},
}

// RoleTable returns the detail table for role, or "" if the role has none.
func RoleTable(role string) string {
	return roleTables[role].Table
}

// RoleColumns returns the editable detail columns for role in a stable order.
func RoleColumns(role string) []string {
	cols := make([]string, 0, len(roleTables[role].Columns))
	for c := range roleTables[role].Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Profile is a user row merged with the detail row for its role.
type Profile struct {
	account.Account
	Details map[string]any `json:"details"`
}

// UserPatch carries the editable users-table fields. Nil fields are left unchanged.
type UserPatch struct {
	Email       *string
	Password    *string
	Status      *string
	PhoneNumber *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Password == nil && p.Status == nil && p.PhoneNumber == nil
}

// Patch is a validated profile update for one user.
type Patch struct {
	User    UserPatch
	Details map[string]any
}

// TeamID returns the team a patch assigns, or "" when it leaves or clears it.
func (p Patch) TeamID() string {
	id, _ := p.Details["teamID"].(string)
	return id
}

// IsEmpty reports whether neither table would change.
func (p Patch) IsEmpty() bool {
	return p.User.IsEmpty() && len(p.Details) == 0
}

// Validate checks user fields and normalises role detail values for role.
// A patch naming no known field fails with ErrNoFields; one mixing known
// and unknown fields fails with ErrUnknownField.
// PRE: role is the target user's role
// POST: Details holds only known columns with normalised values
func (p *Patch) Validate(role string) error {
	if p.IsEmpty() {
		return ErrNoFields
	}
	if p.User.Email != nil {
		trimmed := strings.TrimSpace(*p.User.Email)
		if err := account.ValidateEmail(trimmed); err != nil {
			return err
		}
		p.User.Email = &trimmed
	}
	if p.User.Password != nil {
		if err := account.ValidatePassword(*p.User.Password); err != nil {
			return err
		}
	}
	if p.User.Status != nil && !account.IsValidStatus(*p.User.Status) {
		return account.ErrInvalidStatus
	}

	cols := roleTables[role].Columns
	if p.User.IsEmpty() && !hasKnownColumn(cols, p.Details) {
		return ErrNoFields
	}
	normalised := make(map[string]any, len(p.Details))
	for key, raw := range p.Details {
		kind, ok := cols[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		v, err := normalise(kind, raw)
		if err != nil {
			return fmt.Errorf("%s %w", key, err)
		}
		normalised[key] = v
	}
	if start, ok := normalised["contractStart"].(string); ok {
		if end, ok := normalised["contractEnd"].(string); ok && start != "" && end != "" && end < start {
			return ErrContractRange
		}
	}
	p.Details = normalised
	return nil
}

func hasKnownColumn(cols map[string]FieldKind, details map[string]any) bool {
	for key := range details {
		if _, ok := cols[key]; ok {
			return true
		}
	}
	return false
}

func normalise(kind FieldKind, raw any) (any, error) {
	switch kind {
	case KindNumber, KindInteger:
		f, ok := raw.(float64)
		if !ok || f < 0 {
			return nil, ErrInvalidNumber
		}
		if kind == KindInteger {
			return int64(f), nil
		}
		return f, nil
	case KindTeamRef:
		s, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidText
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, nil
		}
		return s, nil
	case KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidDate
		}
		if s == "" {
			return nil, nil
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, ErrInvalidDate
		}
		return s, nil
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidText
		}
		return strings.TrimSpace(s), nil
	}
}
