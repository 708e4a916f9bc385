package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeStore) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "trailops:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func TestClaim_FirstTime(t *testing.T) {
	store := &fakeStore{setNXResult: true}
	guard, err := NewGuard(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}

	eventID := uuid.New()
	already, err := guard.Claim(context.Background(), "outbox-publisher", eventID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if already {
		t.Fatalf("expected first claim to return false")
	}
	if want := "trailops:idempotency:evt:outbox-publisher:" + eventID.String(); store.lastKey != want {
		t.Fatalf("unexpected key: %q", store.lastKey)
	}
	if store.lastTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %v", store.lastTTL)
	}
}

func TestClaim_AlreadyClaimed(t *testing.T) {
	guard, err := NewGuard(&fakeStore{setNXResult: false}, time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	already, err := guard.Claim(context.Background(), "outbox-publisher", uuid.New())
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !already {
		t.Fatalf("expected already claimed")
	}
}

func TestClaim_Errors(t *testing.T) {
	guard, err := NewGuard(&fakeStore{setNXError: errors.New("boom")}, time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if _, err := guard.Claim(context.Background(), "outbox-publisher", uuid.New()); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := guard.Claim(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected missing worker to fail")
	}
	if _, err := guard.Claim(context.Background(), "outbox-publisher", uuid.Nil); err == nil {
		t.Fatal("expected nil event id to fail")
	}
}

func TestNewGuardValidation(t *testing.T) {
	if _, err := NewGuard(nil, time.Hour); err == nil {
		t.Fatal("expected nil store to fail")
	}
	if _, err := NewGuard(&fakeStore{}, -time.Second); err == nil {
		t.Fatal("expected negative ttl to fail")
	}
}

func TestRelease(t *testing.T) {
	store := &fakeStore{}
	guard, err := NewGuard(store, time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	eventID := uuid.New()
	if err := guard.Release(context.Background(), "outbox-publisher", eventID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if want := "trailops:idempotency:evt:outbox-publisher:" + eventID.String(); store.lastDeleted != want {
		t.Fatalf("unexpected deleted key %q", store.lastDeleted)
	}
}
