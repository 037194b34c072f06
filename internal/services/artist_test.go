package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lclrke/dawa-dashboard/internal/data/repos"
	"github.com/lclrke/dawa-dashboard/internal/data/repos/testutil"
	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/platform/dbctx"
)

func TestArtistService(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewArtistService(log,
		repos.NewArtistRepo(db, log),
		repos.NewArtistProfileRepo(db, log),
		repos.NewTrackSummaryRepo(db, log),
	)

	artist := testutil.SeedArtist(t, ctx, db, "Sigur Rós")
	bare := testutil.SeedArtist(t, ctx, db, "???")

	if got, err := svc.Authorize(ctx, artist.UserID, artist.ID); err != nil || got.ID != artist.ID {
		t.Fatalf("Authorize owner: err=%v got=%+v", err, got)
	}
	if _, err := svc.Authorize(ctx, uuid.New(), artist.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign user: expected ErrForbidden, got=%v", err)
	}
	if _, err := svc.Authorize(ctx, uuid.Nil, artist.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous: expected ErrForbidden, got=%v", err)
	}
	if _, err := svc.Authorize(ctx, artist.UserID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown artist: expected ErrNotFound, got=%v", err)
	}

	if slug, err := svc.OwnerSlug(ctx, artist.ID); err != nil || slug != "sigur-r-s" {
		t.Fatalf("OwnerSlug: slug=%q err=%v", slug, err)
	}
	if slug, err := svc.OwnerSlug(ctx, bare.ID); err != nil || slug != bare.ID.String() {
		t.Fatalf("OwnerSlug fallback: slug=%q err=%v", slug, err)
	}

	if _, err := svc.StyleProfile(ctx, artist.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing profile: expected ErrValidation, got=%v", err)
	}
	profiles := repos.NewArtistProfileRepo(db, log)
	if err := profiles.Upsert(dbctx.Context{Ctx: ctx}, &types.ArtistProfile{
		ArtistID:     artist.ID,
		MasterSchema: datatypes.JSON(`{"genre":"post-rock"}`),
	}); err != nil {
		t.Fatalf("Upsert profile: %v", err)
	}
	doc, err := svc.StyleProfile(ctx, artist.ID)
	if err != nil || len(doc) == 0 {
		t.Fatalf("StyleProfile: err=%v doc=%s", err, doc)
	}

	ts := testutil.SeedTrackSummary(t, ctx, db, artist.ID, `{"overview":{"tempo":72}}`)
	got, err := svc.TrackSummary(ctx, artist.ID, ts.ParseID)
	if err != nil || got.ID != ts.ID {
		t.Fatalf("TrackSummary: err=%v got=%+v", err, got)
	}
	if _, err := svc.TrackSummary(ctx, bare.ID, ts.ParseID); !errors.Is(err, ErrValidation) {
		t.Fatalf("summary of another artist: expected ErrValidation, got=%v", err)
	}
}
