package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/playvault/client-gateway/internal/core/domain"
)

func testSession() *domain.Session {
	return &domain.Session{
		ID: "sid-1",
		Identity: domain.Identity{
			Kind:     domain.IdentityClient,
			ID:       "c_1",
			Username: "alice",
		},
		Token:     "portal-token",
		TokenKind: domain.TokenPortal,
	}
}

func TestSessionStore_SaveAndFind(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	sess := testSession()
	b, _ := json.Marshal(sess)

	mock.ExpectSet("session:sid-1", b, time.Hour).SetVal("OK")
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	mock.ExpectGet("session:sid-1").SetVal(string(b))
	got, err := store.Find(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if got.ID != sess.ID || got.Token != sess.Token || got.Identity.Username != "alice" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_FindMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	mock.ExpectGet("session:ghost").RedisNil()
	_, err := store.Find(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	// Deleting a missing key still succeeds; logout is idempotent.
	mock.ExpectDel("session:sid-1").SetVal(0)
	if err := store.Delete(context.Background(), "sid-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestSessionStore_FindTransportError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewSessionStore(db, time.Hour)

	mock.ExpectGet("session:sid-1").SetErr(errors.New("connection refused"))
	_, err := store.Find(context.Background(), "sid-1")
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
