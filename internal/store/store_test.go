package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTaskStoreWithEmulator(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	store := NewTaskStore(client)

	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.clockNow = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	owner := "owner-" + time.Now().Format("150405.000000000")
	other := "other-" + time.Now().Format("150405.000000000")

	first := &models.Task{Title: "first", Status: models.TaskStatusPending}
	second := &models.Task{Title: "second", Status: models.TaskStatusPending}
	for _, task := range []*models.Task{first, second} {
		if err := store.Create(ctx, owner, task); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	tasks, err := store.List(ctx, owner, dto.TaskFilter{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", tasks)
	}

	if _, err := store.Get(ctx, other, first.ID); !isNotFound(err) {
		t.Fatalf("expected NotFound across tenants, got %v", err)
	}
	if _, err := store.Complete(ctx, other, first.ID); !isNotFound(err) {
		t.Fatalf("expected NotFound completing across tenants, got %v", err)
	}

	if _, err := store.Complete(ctx, owner, first.ID); err != nil {
		t.Fatalf("complete error: %v", err)
	}
	var done *errs.AlreadyDoneError
	if _, err := store.Complete(ctx, owner, first.ID); !errors.As(err, &done) {
		t.Fatalf("expected AlreadyDone, got %v", err)
	}

	deleted, err := store.Delete(ctx, owner, second.ID)
	if err != nil || deleted.Title != "second" {
		t.Fatalf("delete = %+v, %v", deleted, err)
	}
}

func TestConversationStoreWithEmulator(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	store := NewConversationStore(client)
	uid := "user-" + time.Now().Format("150405.000000000")

	conv, err := store.CreateConversation(ctx, uid)
	if err != nil {
		t.Fatalf("create conversation error: %v", err)
	}
	if _, err := store.FindConversation(ctx, "someone-else", conv.ID); !isNotFound(err) {
		t.Fatalf("expected NotFound for other tenant, got %v", err)
	}

	for _, text := range []string{"one", "two", "three"} {
		if _, err := store.AppendMessage(ctx, uid, conv.ID, models.RoleUser, text); err != nil {
			t.Fatalf("append error: %v", err)
		}
	}

	msgs, err := store.ListRecentMessages(ctx, uid, conv.ID, 2)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "three" || msgs[1].Content != "two" {
		t.Fatalf("unexpected window: %+v", msgs)
	}

	if err := store.TouchConversation(ctx, uid, conv.ID); err != nil {
		t.Fatalf("touch error: %v", err)
	}
}

func isNotFound(err error) bool {
	var nf *errs.NotFoundError
	return errors.As(err, &nf)
}
