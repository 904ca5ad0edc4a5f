package image

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close badger: %v", err)
		}
	})

	return NewRepository(db)
}

func seedRecord(t *testing.T, repo *Repository, id, userID string, tags ...string) Metadata {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	meta := Metadata{
		ImageID:   id,
		UserID:    userID,
		Tags:      tags,
		S3Key:     userID + "/" + id,
		S3URL:     fmt.Sprintf("s3://image-storage-bucket/%s/%s", userID, id),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Put(context.Background(), meta); err != nil {
		t.Fatalf("seed record %s: %v", id, err)
	}
	return meta
}

func TestRepositoryPutGetDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	stored := seedRecord(t, repo, "img-1", "u1", "nature")

	got, err := repo.Get(ctx, "img-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserID != stored.UserID || got.S3Key != stored.S3Key || !got.HasTag("nature") {
		t.Fatalf("round-tripped record differs: %+v", got)
	}
	if !got.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("timestamp drift: %v vs %v", got.CreatedAt, stored.CreatedAt)
	}

	if err := repo.Delete(ctx, "img-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.Get(ctx, "img-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestScanFiltersByUser(t *testing.T) {
	repo := newTestRepository(t)
	seedRecord(t, repo, "img-1", "u1")
	seedRecord(t, repo, "img-2", "u2")
	seedRecord(t, repo, "img-3", "u1")

	page, err := repo.Scan(context.Background(), ScanOptions{UserID: "u1", Limit: 100})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 records for u1, got %d", len(page.Items))
	}
	for _, item := range page.Items {
		if item.UserID != "u1" {
			t.Fatalf("record %s belongs to %s", item.ImageID, item.UserID)
		}
	}
}

func TestScanTagMatchIsExact(t *testing.T) {
	repo := newTestRepository(t)
	seedRecord(t, repo, "img-1", "u1", "nature")
	seedRecord(t, repo, "img-2", "u1", "Nature")
	seedRecord(t, repo, "img-3", "u1", "natures")
	seedRecord(t, repo, "img-4", "u2", "nature", "city")

	page, err := repo.Scan(context.Background(), ScanOptions{Tag: "nature", Limit: 100})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 exact tag matches, got %d", len(page.Items))
	}
	for _, item := range page.Items {
		if !item.HasTag("nature") {
			t.Fatalf("record %s lacks exact tag: %v", item.ImageID, item.Tags)
		}
	}
}

func TestScanCombinesFiltersWithAnd(t *testing.T) {
	repo := newTestRepository(t)
	seedRecord(t, repo, "img-1", "u1", "nature")
	seedRecord(t, repo, "img-2", "u1", "city")
	seedRecord(t, repo, "img-3", "u2", "nature")

	page, err := repo.Scan(context.Background(), ScanOptions{UserID: "u1", Tag: "nature", Limit: 100})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ImageID != "img-1" {
		t.Fatalf("expected only img-1, got %+v", page.Items)
	}
}

func TestScanPaginationResumesAndConcatenates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seedRecord(t, repo, "img-1", "u1", "nature")
	seedRecord(t, repo, "img-2", "u2", "city") // non-matching noise between pages
	seedRecord(t, repo, "img-3", "u1", "nature")
	seedRecord(t, repo, "img-4", "u1", "nature")

	full, err := repo.Scan(ctx, ScanOptions{UserID: "u1", Limit: 100})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(full.Items) != 3 || full.HasMore {
		t.Fatalf("expected 3 records and no further pages, got %d has_more=%v", len(full.Items), full.HasMore)
	}

	first, err := repo.Scan(ctx, ScanOptions{UserID: "u1", Limit: 1})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(first.Items) != 1 || !first.HasMore {
		t.Fatalf("expected one record with more pages, got %d has_more=%v", len(first.Items), first.HasMore)
	}

	rest, err := repo.Scan(ctx, ScanOptions{UserID: "u1", Limit: 100, StartAfter: first.LastKey})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(rest.Items) != 2 || rest.HasMore {
		t.Fatalf("expected remaining 2 records, got %d has_more=%v", len(rest.Items), rest.HasMore)
	}

	combined := append(first.Items, rest.Items...)
	if len(combined) != len(full.Items) {
		t.Fatalf("page concatenation size mismatch: %d vs %d", len(combined), len(full.Items))
	}
	for i := range combined {
		if combined[i].ImageID != full.Items[i].ImageID {
			t.Fatalf("page concatenation differs at %d: %s vs %s", i, combined[i].ImageID, full.Items[i].ImageID)
		}
	}
}

func TestScanExactLimitHasNoMore(t *testing.T) {
	repo := newTestRepository(t)
	seedRecord(t, repo, "img-1", "u1")
	seedRecord(t, repo, "img-2", "u1")

	page, err := repo.Scan(context.Background(), ScanOptions{UserID: "u1", Limit: 2})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(page.Items) != 2 || page.HasMore {
		t.Fatalf("expected full final page, got %d has_more=%v", len(page.Items), page.HasMore)
	}
}

func TestRepositoryPing(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}
