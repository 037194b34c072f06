package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
)

func SeedArtist(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Artist {
	tb.Helper()
	a := &types.Artist{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   name,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed artist: %v", err)
	}
	return a
}

func SeedTrackSummary(tb testing.TB, ctx context.Context, tx *gorm.DB, artistID uuid.UUID, summary string) *types.TrackSummary {
	tb.Helper()
	ts := &types.TrackSummary{
		ID:          uuid.New(),
		ArtistID:    artistID,
		ParseID:     uuid.New(),
		Summary:     datatypes.JSON([]byte(summary)),
		AlsFilename: "session.als",
		ProjectName: "Session",
	}
	if err := tx.WithContext(ctx).Create(ts).Error; err != nil {
		tb.Fatalf("seed track summary: %v", err)
	}
	return ts
}
