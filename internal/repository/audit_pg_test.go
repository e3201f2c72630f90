package repository

import (
	"context"
	"testing"
)

func TestPurgeDisabledRetentionIsNoOp(t *testing.T) {
	// retention <= 0 means "keep forever"; must return before touching the DB
	repo := &PostgresAuditRepo{}
	if err := repo.Purge(context.Background(), 0); err != nil {
		t.Fatalf("Purge(0): %v", err)
	}
	if err := repo.Purge(context.Background(), -5); err != nil {
		t.Fatalf("Purge(-5): %v", err)
	}
}
