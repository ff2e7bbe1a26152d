package models

import "time"

type MeetingStatus string

const (
	MeetingProcessing MeetingStatus = "PROCESSING"
	MeetingCompleted  MeetingStatus = "COMPLETED"
)

type Meeting struct {
	ID         string        `json:"id"`
	ProjectID  string        `json:"projectId"`
	Name       string        `json:"name"`
	MeetingURL string        `json:"meetingUrl"`
	Status     MeetingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	Issues     []Issue       `json:"issues"`
}

// Issue is a discussion point extracted from a processed meeting.
type Issue struct {
	ID       string `json:"id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Gist     string `json:"gist"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

type UploadMeetingInput struct {
	Name       string `json:"name"`
	MeetingURL string `json:"meetingUrl"`
}
