package cache

import (
	"context"
	"testing"

	"outreach/internal/utils"
	"outreach/pkg/types"
)

func sampleRequest(id string, status types.RequestStatus) *types.Request {
	return &types.Request{
		ID:        id,
		Status:    status,
		Notes:     utils.StringPtr("original notes"),
		ProofURLs: []string{"https://cdn.example.com/a.jpg"},
	}
}

func TestMemory_SpeculativeWriteAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DetailKey("req-1")

	if _, ok := m.GetRequest(ctx, key); ok {
		t.Fatal("expected empty cache")
	}

	m.SpeculativeWrite(ctx, key, sampleRequest("req-1", types.StatusAssigned))

	got, ok := m.GetRequest(ctx, key)
	if !ok {
		t.Fatal("expected cached request")
	}
	if got.Status != types.StatusAssigned {
		t.Fatalf("status = %s, want %s", got.Status, types.StatusAssigned)
	}
}

func TestMemory_RollbackRestoresExactSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DetailKey("req-1")

	original := sampleRequest("req-1", types.StatusAssigned)
	m.SpeculativeWrite(ctx, key, original)

	snapshot := m.Snapshot(ctx, key)

	speculative := original.Clone()
	speculative.Status = types.StatusDelivered
	speculative.Notes = utils.StringPtr("changed")
	speculative.ProofURLs = append(speculative.ProofURLs, "https://cdn.example.com/b.jpg")
	m.SpeculativeWrite(ctx, key, speculative)

	m.Rollback(ctx, snapshot)

	got, ok := m.GetRequest(ctx, key)
	if !ok {
		t.Fatal("expected cached request after rollback")
	}
	if got.Status != types.StatusAssigned {
		t.Fatalf("status = %s, want %s", got.Status, types.StatusAssigned)
	}
	if *got.Notes != "original notes" {
		t.Fatalf("notes = %q, want original", *got.Notes)
	}
	if len(got.ProofURLs) != 1 {
		t.Fatalf("proof urls = %d, want 1", len(got.ProofURLs))
	}
}

func TestMemory_RollbackOfAbsentKeyClearsIt(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DetailKey("req-1")

	snapshot := m.Snapshot(ctx, key)
	if snapshot.Existed {
		t.Fatal("expected snapshot of absent key")
	}

	m.SpeculativeWrite(ctx, key, sampleRequest("req-1", types.StatusAssigned))
	m.Rollback(ctx, snapshot)

	if _, ok := m.GetRequest(ctx, key); ok {
		t.Fatal("expected key cleared by rollback")
	}
}

func TestMemory_InvalidateMarksStale(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.SpeculativeWrite(ctx, ListKey(), sampleRequest("req-1", types.StatusAssigned))
	m.SpeculativeWrite(ctx, AssignedKey("vol-1"), sampleRequest("req-1", types.StatusAssigned))

	m.Invalidate(ctx, ListKey(), AssignedKey("vol-1"))

	if _, ok := m.GetRequest(ctx, ListKey()); ok {
		t.Fatal("expected list key stale")
	}
	if _, ok := m.GetRequest(ctx, AssignedKey("vol-1")); ok {
		t.Fatal("expected assigned key stale")
	}
}

// The cache hands out copies: mutating a returned request must not leak into
// the cached entry.
func TestMemory_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	key := DetailKey("req-1")

	m.SpeculativeWrite(ctx, key, sampleRequest("req-1", types.StatusAssigned))

	first, _ := m.GetRequest(ctx, key)
	first.Status = types.StatusCancelled
	first.ProofURLs[0] = "mutated"

	second, _ := m.GetRequest(ctx, key)
	if second.Status != types.StatusAssigned {
		t.Fatalf("cached status mutated to %s", second.Status)
	}
	if second.ProofURLs[0] != "https://cdn.example.com/a.jpg" {
		t.Fatalf("cached proof url mutated to %s", second.ProofURLs[0])
	}
}
