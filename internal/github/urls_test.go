package github

import (
	"errors"
	"testing"

	"github.com/trackhub/backend/internal/models"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https URL", "https://github.com/octocat/hello-world", "octocat", "hello-world", false},
		{"trailing slash", "https://github.com/octocat/hello-world/", "octocat", "hello-world", false},
		{"git suffix", "https://github.com/octocat/hello-world.git", "octocat", "hello-world", false},
		{"slash then git suffix", "https://github.com/octocat/hello-world.git/", "octocat", "hello-world", false},
		{"bare owner/repo", "octocat/hello-world", "octocat", "hello-world", false},
		{"enterprise host", "https://github.example.com/team/service", "team", "service", false},
		{"empty", "", "", "", true},
		{"no slash", "hello-world", "", "", true},
		{"empty repo", "octocat//", "", "", true},
		{"ssh style", "git@github.com:octocat/hello-world.git", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidRepository) {
					t.Fatalf("expected ErrInvalidRepository, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestResolveToken(t *testing.T) {
	token, err := ResolveToken("project-token", "server-token")
	if err != nil || token != "project-token" {
		t.Errorf("expected project token to win, got %q, %v", token, err)
	}

	token, err = ResolveToken("", "server-token")
	if err != nil || token != "server-token" {
		t.Errorf("expected server fallback, got %q, %v", token, err)
	}

	_, err = ResolveToken("", "")
	if !errors.Is(err, models.ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}
