package models

import "time"

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	RepoURL     string     `json:"repoUrl"`
	GithubToken string     `json:"-"`
	IndexStatus string     `json:"indexStatus"` // pending, indexing, ready, error
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

type CreateProjectInput struct {
	Name        string `json:"name"`
	RepoURL     string `json:"repoUrl"`
	GithubToken string `json:"githubToken"`
}

// TeamMember is a membership edge joined with its user payload.
type TeamMember struct {
	UserID    string    `json:"userId"`
	ProjectID string    `json:"projectId"`
	JoinedAt  time.Time `json:"joinedAt"`
	User      *User     `json:"user,omitempty"`
}
