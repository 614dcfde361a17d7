package email

import (
	"bytes"
	"html/template"
)

// Notification categories.
const (
	CategoryAccountStatus    = "account_status"
	CategoryScheduleApproved = "schedule_approved"
)

var statusTmpl = template.Must(template.New("status").Parse(
	`<p>Hi {{.Name}},</p><p>Your ClubHub account status changed from <strong>{{.OldStatus}}</strong> to <strong>{{.NewStatus}}</strong>.</p>` +
		`{{if eq .NewStatus "notActive"}}<p>You have been signed out. Contact club staff if this is unexpected.</p>{{end}}`))

var scheduleTmpl = template.Must(template.New("schedule").Parse(
	`<p>Hi {{.Name}},</p><p>Your {{.EventType}} event <strong>{{.Title}}</strong> on {{.EventDate}} at {{.StartTime}} has been approved by {{.ApproverName}}.</p>`))

// StatusChanged builds the notice sent when staff change a user's account status.
func StatusChanged(to, name, oldStatus, newStatus string) (Message, error) {
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, map[string]string{"Name": name, "OldStatus": oldStatus, "NewStatus": newStatus})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Your ClubHub account status changed",
		HTML:     buf.String(),
		Category: CategoryAccountStatus,
	}, nil
}

// ScheduleDetails is the subset of a schedule an approval notice shows.
type ScheduleDetails struct {
	Title        string
	EventType    string
	EventDate    string
	StartTime    string
	ApproverName string
}

// ScheduleApproved builds the notice sent to a schedule's creator on approval.
func ScheduleApproved(to, name string, d ScheduleDetails) (Message, error) {
	var buf bytes.Buffer
	err := scheduleTmpl.Execute(&buf, struct {
		Name string
		ScheduleDetails
	}{name, d})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Schedule approved: " + d.Title,
		HTML:     buf.String(),
		Category: CategoryScheduleApproved,
	}, nil
}
