package store

import (
	"context"
	"testing"

	"github.com/erazemk/dispensa/internal/db"
)

func TestGetTokenSecretGeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetTokenSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 64 { // 32 bytes hex-encoded
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetTokenSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected same secret, got %q and %q", first, second)
	}
}
