package schedule

// Patch carries a partial schedule update. Nil fields are left unchanged.
type Patch struct {
	EventType      *string `json:"eventType"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	EventDate      *string `json:"eventDate"`
	StartTime      *string `json:"startTime"`
	EndTime        *string `json:"endTime"`
	DayOfWeek      *string `json:"dayOfWeek"`
	Location       *string `json:"location"`
	TeamID         *string `json:"teamID"`
	OpponentTeamID *string `json:"opponentTeamID"`
	Priority       *string `json:"priority"`
	Recurrence     *string `json:"recurrence"`
	EventStatus    *string `json:"eventStatus"`
	Notes          *string `json:"notes"`
}

func (p Patch) fields() []struct {
	src *string
	dst func(*Schedule) *string
} {
	return []struct {
		src *string
		dst func(*Schedule) *string
	}{
		{p.EventType, func(s *Schedule) *string { return &s.EventType }},
		{p.Title, func(s *Schedule) *string { return &s.Title }},
		{p.Description, func(s *Schedule) *string { return &s.Description }},
		{p.EventDate, func(s *Schedule) *string { return &s.EventDate }},
		{p.StartTime, func(s *Schedule) *string { return &s.StartTime }},
		{p.EndTime, func(s *Schedule) *string { return &s.EndTime }},
		{p.DayOfWeek, func(s *Schedule) *string { return &s.DayOfWeek }},
		{p.Location, func(s *Schedule) *string { return &s.Location }},
		{p.TeamID, func(s *Schedule) *string { return &s.TeamID }},
		{p.OpponentTeamID, func(s *Schedule) *string { return &s.OpponentTeamID }},
		{p.Priority, func(s *Schedule) *string { return &s.Priority }},
		{p.Recurrence, func(s *Schedule) *string { return &s.Recurrence }},
		{p.EventStatus, func(s *Schedule) *string { return &s.EventStatus }},
		{p.Notes, func(s *Schedule) *string { return &s.Notes }},
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	for _, f := range p.fields() {
		if f.src != nil {
			return false
		}
	}
	return true
}

// Apply copies the non-nil fields onto s. Callers re-run Validate afterwards.
func (p Patch) Apply(s *Schedule) {
	for _, f := range p.fields() {
		if f.src != nil {
			*f.dst(s) = *f.src
		}
	}
}
