package models

import (
	"encoding/json"
	"time"
)

// Question is a saved Q&A exchange over an indexed codebase. FileReferences
// is an opaque document: its shape is owned by whatever produced the answer,
// so it is stored and returned verbatim.
type Question struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"projectId"`
	UserID         string          `json:"userId"`
	Question       string          `json:"question"`
	Answer         string          `json:"answer"`
	FileReferences json.RawMessage `json:"fileReferences,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	User           *User           `json:"user,omitempty"`
}

type SaveAnswerInput struct {
	Question       string          `json:"question"`
	Answer         string          `json:"answer"`
	FileReferences json.RawMessage `json:"fileReferences"`
}

type AskInput struct {
	Question string `json:"question"`
}

type AskResult struct {
	Answer         string          `json:"answer"`
	FileReferences json.RawMessage `json:"fileReferences"`
}
