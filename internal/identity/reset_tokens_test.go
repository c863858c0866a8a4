package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestResetTokenIssueAndConsume(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens, err := NewResetTokenStore(redis.Addr(), "", time.Minute)
	if err != nil {
		t.Fatalf("new reset token store: %v", err)
	}

	token, err := tokens.Issue(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	uid, err := tokens.Consume(context.Background(), token)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if uid != "u-1" {
		t.Fatalf("uid = %q, want u-1", uid)
	}

	// single use
	if _, err := tokens.Consume(context.Background(), token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("reuse err = %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens, err := NewResetTokenStore(redis.Addr(), "", time.Minute)
	if err != nil {
		t.Fatalf("new reset token store: %v", err)
	}

	token, err := tokens.Issue(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	redis.FastForward(2 * time.Minute)
	if _, err := tokens.Consume(context.Background(), token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expired err = %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetTokenUnknown(t *testing.T) {
	redis := miniredis.RunT(t)
	tokens, err := NewResetTokenStore(redis.Addr(), "", 0)
	if err != nil {
		t.Fatalf("new reset token store: %v", err)
	}
	if _, err := tokens.Consume(context.Background(), "never-issued"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("err = %v, want ErrResetTokenInvalid", err)
	}
}
