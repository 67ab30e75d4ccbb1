package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"taskflow/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, email string, role models.Role) models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), email, "User "+email, "hash", role)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func seedProject(t *testing.T, store *Store, name string, managerID int64) models.Project {
	t.Helper()
	project, err := store.CreateProject(context.Background(), models.Project{
		Name:      name,
		Status:    models.ProjectPlanning,
		StartDate: "2024-01-01",
		ManagerID: &managerID,
	})
	if err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func seedTask(t *testing.T, store *Store, projectID int64, assigneeID *int64) models.Task {
	t.Helper()
	task, err := store.CreateTask(context.Background(), models.Task{
		Title:      "task",
		Status:     models.TaskTodo,
		Priority:   models.PriorityMedium,
		ProjectID:  projectID,
		AssigneeID: assigneeID,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "ana@example.com", models.RoleManager)

	got, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.Email != "ana@example.com" || got.Role != models.RoleManager {
		t.Errorf("unexpected user: %+v", got)
	}

	byEmail, err := store.GetUserByEmail(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("failed to get user by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("lookup by email returned user %d, want %d", byEmail.ID, created.ID)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "ana@example.com", models.RoleManager)

	if _, err := store.CreateUser(context.Background(), "ana@example.com", "Other", "hash", models.RoleDeveloper); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUser(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListAssignableUsersExcludesAdmins(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "admin@example.com", models.RoleAdmin)
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	dev := seedUser(t, store, "bob@example.com", models.RoleDeveloper)

	users, err := store.ListAssignableUsers(context.Background())
	if err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].ID != manager.ID || users[1].ID != dev.ID {
		t.Errorf("unexpected listing: %+v", users)
	}
}

func TestListProjectsForAssignee(t *testing.T) {
	store := setupTestStore(t)
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	dev := seedUser(t, store, "bob@example.com", models.RoleDeveloper)

	p1 := seedProject(t, store, "P1", manager.ID)
	seedProject(t, store, "P2", manager.ID)

	// Two tasks in the same project must not produce a duplicate row.
	seedTask(t, store, p1.ID, &dev.ID)
	seedTask(t, store, p1.ID, &dev.ID)

	projects, err := store.ListProjectsForAssignee(context.Background(), dev.ID)
	if err != nil {
		t.Fatalf("failed to list assigned projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != p1.ID {
		t.Errorf("unexpected projects: %+v", projects)
	}

	none, err := store.ListProjectsForAssignee(context.Background(), manager.ID)
	if err != nil {
		t.Fatalf("failed to list assigned projects: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no projects, got %+v", none)
	}
}

func TestSetStatusPairsHistoryAtomically(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	project := seedProject(t, store, "P1", manager.ID)
	task := seedTask(t, store, project.ID, nil)

	prev := task.Status
	next := models.TaskInProgress
	updated, err := store.SetStatus(ctx, task.ID, next, models.TaskHistoryEntry{
		TaskID:         task.ID,
		UserID:         manager.ID,
		Action:         models.ActionUpdated,
		PreviousStatus: &prev,
		NewStatus:      &next,
	})
	if err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
	if updated.Status != models.TaskInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", updated.Status)
	}

	entries, err := store.ListHistory(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d history entries, want 1", len(entries))
	}
}

func TestFailedHistoryAppendRollsBackTaskMutation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	project := seedProject(t, store, "P1", manager.ID)
	task := seedTask(t, store, project.ID, nil)

	prev := task.Status
	next := models.TaskDone
	// Non-existent actor id violates the task_history foreign key, which
	// must abort the whole transaction including the status write.
	_, err := store.SetStatus(ctx, task.ID, next, models.TaskHistoryEntry{
		TaskID:         task.ID,
		UserID:         99999,
		Action:         models.ActionCompleted,
		PreviousStatus: &prev,
		NewStatus:      &next,
	})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.Status != models.TaskTodo {
		t.Errorf("status = %s, task mutation must roll back with the failed append", got.Status)
	}

	entries, err := store.ListHistory(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d history entries, want 0 after rollback", len(entries))
	}
}

func TestReleaseTaskClearsAssigneeAndResetsStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	dev := seedUser(t, store, "bob@example.com", models.RoleDeveloper)
	project := seedProject(t, store, "P1", manager.ID)
	task := seedTask(t, store, project.ID, &dev.ID)

	prev := models.TaskReview
	next := models.TaskTodo
	if _, err := store.SetStatus(ctx, task.ID, models.TaskReview, models.TaskHistoryEntry{
		TaskID: task.ID, UserID: dev.ID, Action: models.ActionUpdated, NewStatus: &prev,
	}); err != nil {
		t.Fatalf("failed to set status: %v", err)
	}

	released, err := store.ReleaseTask(ctx, task.ID, models.TaskHistoryEntry{
		TaskID: task.ID, UserID: dev.ID, Action: models.ActionAbandoned, PreviousStatus: &prev, NewStatus: &next,
	})
	if err != nil {
		t.Fatalf("failed to release task: %v", err)
	}
	if released.AssigneeID != nil {
		t.Error("assignee must be cleared")
	}
	if released.Status != models.TaskTodo {
		t.Errorf("status = %s, want TODO", released.Status)
	}
}

func TestListHistoryOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)
	project := seedProject(t, store, "P1", manager.ID)
	task := seedTask(t, store, project.ID, nil)

	statuses := []models.TaskStatus{models.TaskInProgress, models.TaskReview, models.TaskDone}
	for _, status := range statuses {
		status := status
		if _, err := store.SetStatus(ctx, task.ID, status, models.TaskHistoryEntry{
			TaskID: task.ID, UserID: manager.ID, Action: models.ActionUpdated, NewStatus: &status,
		}); err != nil {
			t.Fatalf("failed to set status %s: %v", status, err)
		}
	}

	entries, err := store.ListHistory(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(entries) != len(statuses) {
		t.Fatalf("got %d entries, want %d", len(entries), len(statuses))
	}
	for i, entry := range entries {
		if entry.NewStatus == nil || *entry.NewStatus != statuses[i] {
			t.Errorf("entry %d out of order: %+v", i, entry)
		}
	}
}

func TestMutationsOnMissingTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	manager := seedUser(t, store, "ana@example.com", models.RoleManager)

	entry := models.TaskHistoryEntry{TaskID: 999, UserID: manager.ID, Action: models.ActionUpdated}

	if _, err := store.SetStatus(ctx, 999, models.TaskDone, entry); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus error = %v, want ErrNotFound", err)
	}
	if _, err := store.SetAssignee(ctx, 999, &manager.ID, entry); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetAssignee error = %v, want ErrNotFound", err)
	}
	if _, err := store.ReleaseTask(ctx, 999, entry); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReleaseTask error = %v, want ErrNotFound", err)
	}
}
