package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestPendingActionQueue_PeekPreservesOrder(t *testing.T) {
	client, server := newTestRedis(t)
	q := NewPendingActionQueue(client, "")
	ctx := context.Background()

	for _, id := range []string{"01A", "01B", "01C"} {
		if err := q.Enqueue(ctx, domain.PendingAction{ID: id, UserID: "u1", InterventionID: "i1", Kind: domain.PendingActionComment}); err != nil {
			t.Fatalf("Enqueue returned error: %v", err)
		}
	}

	actions, err := q.Peek(ctx, "u1")
	if err != nil {
		t.Fatalf("Peek returned error: %v", err)
	}
	if len(actions) != 3 || actions[0].ID != "01A" || actions[2].ID != "01C" {
		t.Fatalf("unexpected peek order: %+v", actions)
	}
	if !server.Exists("gestihotel:pending:u1") {
		t.Fatalf("expected queue key to survive a peek")
	}
	if n, err := q.Len(ctx, "u1"); err != nil || n != 3 {
		t.Fatalf("expected three queued actions after peek, got %d (%v)", n, err)
	}
}

func TestPendingActionQueue_AckTrimsHead(t *testing.T) {
	client, server := newTestRedis(t)
	q := NewPendingActionQueue(client, "test:pending")
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		_ = q.Enqueue(ctx, domain.PendingAction{ID: id, UserID: "u1"})
	}

	if err := q.Ack(ctx, "u1", 0); err != nil {
		t.Fatalf("Ack(0) returned error: %v", err)
	}
	if err := q.Ack(ctx, "u1", 2); err != nil {
		t.Fatalf("Ack returned error: %v", err)
	}
	_ = q.Enqueue(ctx, domain.PendingAction{ID: "fourth", UserID: "u1"})

	actions, err := q.Peek(ctx, "u1")
	if err != nil {
		t.Fatalf("Peek returned error: %v", err)
	}
	if len(actions) != 2 || actions[0].ID != "third" || actions[1].ID != "fourth" {
		t.Fatalf("expected [third fourth], got %+v", actions)
	}

	if err := q.Ack(ctx, "u1", 5); err != nil {
		t.Fatalf("Ack past the end returned error: %v", err)
	}
	if server.Exists("test:pending:u1") {
		t.Fatalf("expected fully acknowledged queue to be removed")
	}
}

func TestPendingActionQueue_PeekRemovesMalformed(t *testing.T) {
	client, server := newTestRedis(t)
	q := NewPendingActionQueue(client, "")
	ctx := context.Background()

	if _, err := server.Push("gestihotel:pending:u1", "{not-json", `{"id":"ok","user_id":"u1"}`); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	actions, err := q.Peek(ctx, "u1")
	if err != nil {
		t.Fatalf("Peek returned error: %v", err)
	}
	if len(actions) != 1 || actions[0].ID != "ok" {
		t.Fatalf("expected only the valid entry, got %+v", actions)
	}
	if n, _ := q.Len(ctx, "u1"); n != 1 {
		t.Fatalf("expected malformed entry to be removed, got %d entries", n)
	}
}

func TestPendingActionQueue_RequiresUser(t *testing.T) {
	client, _ := newTestRedis(t)
	q := NewPendingActionQueue(client, "")
	if err := q.Enqueue(context.Background(), domain.PendingAction{ID: "x"}); err == nil {
		t.Fatalf("expected error without user id")
	}
}

func TestCacheStorage_GroupsAndDelete(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewCacheStorage(client)
	ctx := context.Background()

	for _, group := range []string{"gestihotel-v1", "gestihotel-v2", "other-v1"} {
		if err := store.Put(ctx, group, "index.html", []byte("<html>"), time.Hour); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}
	_ = store.Put(ctx, "gestihotel-v1", "app.js", []byte("js"), 0)

	groups, err := store.Groups(ctx, "gestihotel")
	if err != nil {
		t.Fatalf("Groups returned error: %v", err)
	}
	if len(groups) != 2 || groups[0] != "gestihotel-v1" || groups[1] != "gestihotel-v2" {
		t.Fatalf("unexpected groups %v", groups)
	}

	deleted, err := store.DeleteGroup(ctx, "gestihotel-v1")
	if err != nil {
		t.Fatalf("DeleteGroup returned error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected two deleted keys, got %d", deleted)
	}
	if server.Exists("gestihotel-v1:index.html") || server.Exists("gestihotel-v1:app.js") || !server.Exists("gestihotel-v2:index.html") {
		t.Fatalf("expected only the old group to be removed")
	}
}
