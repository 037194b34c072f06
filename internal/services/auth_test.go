package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lclrke/dawa-dashboard/internal/platform/ctxutil"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(testLogger(t), "secret", "dawa")
	user := uuid.New()
	tok, err := svc.IssueToken(user, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != user || rd.TokenString != tok {
		t.Fatalf("request data: %+v", rd)
	}
}

func TestAuthServiceRejects(t *testing.T) {
	svc := NewAuthService(testLogger(t), "secret", "dawa")
	expired, _ := svc.IssueToken(uuid.New(), -time.Minute)
	foreign, _ := NewAuthService(testLogger(t), "other", "dawa").IssueToken(uuid.New(), time.Minute)
	wrongIssuer, _ := NewAuthService(testLogger(t), "secret", "elsewhere").IssueToken(uuid.New(), time.Minute)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong secret": foreign,
		"wrong issuer": wrongIssuer,
	} {
		if _, err := svc.SetContextFromToken(context.Background(), tok); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
