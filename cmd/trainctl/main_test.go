package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/lclrke/dawa-dashboard/internal/domain"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

func TestBuildStatusRowsFixedOrder(t *testing.T) {
	rows := buildStatusRows(map[types.TrainingStatus]int64{
		types.TrainingStatusFailed: 2,
		types.TrainingStatusReady:  5,
	})
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r[0]+"="+r[1])
	}
	if strings.Join(got, ",") != "ready=5,exported=0,failed=2" {
		t.Fatalf("rows: %v", got)
	}
}

func TestBuildItemRowsFallsBackToParseRef(t *testing.T) {
	ref := uuid.New()
	rows := buildItemRows([]*types.TrainingItem{
		{ID: uuid.New(), Status: types.TrainingStatusReady, SourceFilename: "a.als", CreatedAt: time.Unix(0, 0)},
		{ID: uuid.New(), Status: types.TrainingStatusFailed, SourceTrackRef: &ref, CreatedAt: time.Unix(0, 0)},
	})
	if rows[0][2] != "a.als" || rows[1][2] != ref.String() {
		t.Fatalf("source column: %v", rows)
	}
	if rows[0][3] != "1970-01-01T00:00:00Z" {
		t.Fatalf("created column: %s", rows[0][3])
	}
}

func TestBuildExportRows(t *testing.T) {
	rows := buildExportRows(services.ExportResult{
		ArchiveKey:    "owners/x/datasets/dataset-1.zip",
		IncludedCount: 3,
		SkippedIDs:    []uuid.UUID{uuid.New()},
		StatusUpdated: true,
	})
	if rows[2][1] != "3" || rows[3][1] != "1" || rows[4][1] != "true" {
		t.Fatalf("rows: %v", rows)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		12:              "12 B",
		2048:            "2.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d)=%q want %q", in, got, want)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") || !strings.HasSuffix(out, "\n") {
		t.Fatalf("table:\n%s", out)
	}
}

func TestArtistFlagRequired(t *testing.T) {
	cmd := newRootCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetOut(&stderr)
	cmd.SetArgs([]string{"export"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--artist is required") {
		t.Fatalf("expected missing artist error, got=%v", err)
	}
}
