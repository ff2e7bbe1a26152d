package models

import "time"

// Commit is a polled commit from the linked repository, keyed by
// (projectId, sha) so repeated polls are idempotent.
type Commit struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	CommittedAt  time.Time `json:"committedAt"`
}

// CommitFile is one file of a pending multi-file commit.
type CommitFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CommitToRepoInput struct {
	Branch  string       `json:"branch"`
	Message string       `json:"message"`
	Files   []CommitFile `json:"files"`
}
