package db

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trackhub/backend/internal/models"
)

// testClient connects to a local Neo4j. Integration tests skip under -short.
func testClient(t *testing.T) *Neo4jClient {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client, err := NewNeo4jClient(context.Background(), Neo4jConfig{
		URI:      "bolt://localhost:7687",
		Username: "neo4j",
		Password: "trackhub_password",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func seedUser(t *testing.T, client *Neo4jClient) string {
	t.Helper()
	id := "test-user-" + uuid.New().String()
	if err := EnsureUser(context.Background(), client, &models.User{ID: id, Email: id + "@example.com"}); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	return id
}

func setCredits(t *testing.T, client *Neo4jClient, userID string, credits int) {
	t.Helper()
	ctx := context.Background()
	session := client.Session(ctx)
	defer session.Close(ctx)
	_, err := session.Run(ctx,
		`MATCH (u:User {id: $id}) SET u.credits = $credits`,
		map[string]any{"id": userID, "credits": credits})
	if err != nil {
		t.Fatalf("failed to set credits: %v", err)
	}
}

func getCredits(t *testing.T, client *Neo4jClient, userID string) int {
	t.Helper()
	user, err := GetUser(context.Background(), client, userID)
	if err != nil || user == nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	return user.Credits
}

func TestEnsureUser_GrantsDefaultCreditsOnce(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	id := "test-user-" + uuid.New().String()
	user := &models.User{ID: id, Email: id + "@example.com"}
	if err := EnsureUser(ctx, client, user); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if got := getCredits(t, client, id); got != models.DefaultCredits {
		t.Errorf("expected %d starting credits, got %d", models.DefaultCredits, got)
	}

	setCredits(t, client, id, 42)
	if err := EnsureUser(ctx, client, user); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if got := getCredits(t, client, id); got != 42 {
		t.Errorf("re-login reset the balance: got %d", got)
	}
}

func TestCreateProject_DebitsExactly(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 100)

	project, err := CreateProject(ctx, client, userID, &models.Project{
		Name:    "debit-test",
		RepoURL: "https://github.com/acme/web",
	}, 40)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if got := getCredits(t, client, userID); got != 60 {
		t.Errorf("expected balance 60 after debit, got %d", got)
	}

	ok, err := IsMember(ctx, client, userID, project.ID)
	if err != nil || !ok {
		t.Errorf("creator is not a member: %v", err)
	}
	if project.IndexStatus != "pending" {
		t.Errorf("expected indexStatus pending, got %q", project.IndexStatus)
	}
}

func TestCreateProject_InsufficientCreditsLeavesNothing(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 10)

	_, err := CreateProject(ctx, client, userID, &models.Project{
		Name:    "too-expensive",
		RepoURL: "https://github.com/acme/huge",
	}, 11)
	if !errors.Is(err, models.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if got := getCredits(t, client, userID); got != 10 {
		t.Errorf("balance moved on a rejected admission: %d", got)
	}

	projects, err := ListProjects(ctx, client, userID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	for _, p := range projects {
		if p.Name == "too-expensive" {
			t.Error("rejected admission left a project behind")
		}
	}
}

func TestCreateProject_ConcurrentAdmissions(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 100)

	// Two admissions priced at 60 against a balance of 100: at most one wins.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = CreateProject(ctx, client, userID, &models.Project{
				Name:    "race",
				RepoURL: "https://github.com/acme/race",
			}, 60)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, models.ErrInsufficientCredits) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one admission to win, got %d", wins)
	}
	if got := getCredits(t, client, userID); got != 40 {
		t.Errorf("expected balance 40 after one debit, got %d", got)
	}
}

func TestSoftDeleteHidesProject(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 100)

	project, err := CreateProject(ctx, client, userID, &models.Project{
		Name:    "doomed",
		RepoURL: "https://github.com/acme/doomed",
	}, 1)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if err := SoftDeleteProject(ctx, client, project.ID); err != nil {
		t.Fatalf("SoftDeleteProject failed: %v", err)
	}

	got, err := GetProject(ctx, client, project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got != nil {
		t.Error("soft-deleted project still readable")
	}

	projects, err := ListProjects(ctx, client, userID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	for _, p := range projects {
		if p.ID == project.ID {
			t.Error("soft-deleted project still listed")
		}
	}
}

func TestIsMember_Strangers(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	owner := seedUser(t, client)
	setCredits(t, client, owner, 100)
	stranger := seedUser(t, client)

	project, err := CreateProject(ctx, client, owner, &models.Project{
		Name:    "private",
		RepoURL: "https://github.com/acme/private",
	}, 1)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	ok, err := IsMember(ctx, client, stranger, project.ID)
	if err != nil {
		t.Fatalf("IsMember failed: %v", err)
	}
	if ok {
		t.Error("stranger passed the membership check")
	}

	// Unknown project looks the same as a denied one.
	ok, err = IsMember(ctx, client, owner, "no-such-project")
	if err != nil || ok {
		t.Errorf("expected false for unknown project, got %v, %v", ok, err)
	}
}

func TestQuestions_NewestFirstWithAuthor(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 100)

	project, err := CreateProject(ctx, client, userID, &models.Project{
		Name:    "qa",
		RepoURL: "https://github.com/acme/qa",
	}, 1)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	refs, _ := json.Marshal([]map[string]any{{"fileName": "main.go"}})
	for _, q := range []string{"first", "second", "third"} {
		_, err := CreateQuestion(ctx, client, &models.Question{
			ProjectID:      project.ID,
			UserID:         userID,
			Question:       q,
			Answer:         "answer to " + q,
			FileReferences: refs,
		})
		if err != nil {
			t.Fatalf("CreateQuestion failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	questions, err := ListQuestions(ctx, client, project.ID)
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Question != "third" {
		t.Errorf("expected newest first, got %q", questions[0].Question)
	}
	if questions[0].User == nil || questions[0].User.ID != userID {
		t.Error("expected the asking user attached")
	}
	if string(questions[0].FileReferences) == "" {
		t.Error("expected file references returned verbatim")
	}
}

func TestAddCredits_Idempotent(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 10)

	sessionID := "cs_test_" + uuid.New().String()
	for i := 0; i < 3; i++ {
		if err := AddCredits(ctx, client, userID, 50, sessionID); err != nil {
			t.Fatalf("AddCredits failed: %v", err)
		}
	}

	if got := getCredits(t, client, userID); got != 60 {
		t.Errorf("redelivered webhook credited more than once: balance %d", got)
	}

	txs, err := ListTransactions(ctx, client, userID)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(txs))
	}
}

func TestSaveCommits_MergesBySHA(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	projectID := "test-project-" + uuid.New().String()
	commits := []*models.Commit{
		{SHA: "aaa", Message: "one", AuthorName: "dev", CommittedAt: time.Now().UTC().Add(-time.Hour)},
		{SHA: "bbb", Message: "two", AuthorName: "dev", CommittedAt: time.Now().UTC()},
	}

	for i := 0; i < 2; i++ {
		if err := SaveCommits(ctx, client, projectID, commits); err != nil {
			t.Fatalf("SaveCommits failed: %v", err)
		}
	}

	stored, err := ListCommits(ctx, client, projectID)
	if err != nil {
		t.Fatalf("ListCommits failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 commits after repeated polls, got %d", len(stored))
	}
	if stored[0].SHA != "bbb" {
		t.Errorf("expected newest commit first, got %q", stored[0].SHA)
	}
}

func TestMeetingLifecycle(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	userID := seedUser(t, client)
	setCredits(t, client, userID, 100)

	project, err := CreateProject(ctx, client, userID, &models.Project{
		Name:    "standup",
		RepoURL: "https://github.com/acme/standup",
	}, 1)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	meeting, err := CreateMeeting(ctx, client, &models.Meeting{
		ProjectID:  project.ID,
		Name:       "sprint review",
		MeetingURL: "https://storage.example.com/rec.mp3",
		Status:     models.MeetingProcessing,
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if meeting.Status != models.MeetingProcessing {
		t.Errorf("expected PROCESSING, got %q", meeting.Status)
	}

	got, err := GetMeeting(ctx, client, meeting.ID)
	if err != nil || got == nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if got.Issues == nil {
		t.Error("expected issues to decode as an empty slice, not nil")
	}

	if err := DeleteMeeting(ctx, client, meeting.ID); err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}
	got, err = GetMeeting(ctx, client, meeting.ID)
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if got != nil {
		t.Error("deleted meeting still readable")
	}
}
