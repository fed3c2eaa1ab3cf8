// Package cache is the optimistic read cache for request views. The update
// orchestrator writes speculatively before persistence resolves and rolls back
// to an exact snapshot when it fails; list-style keys are only ever
// invalidated.
package cache

import (
	"context"

	"outreach/pkg/types"
)

type Key string

func DetailKey(requestID string) Key {
	return Key("requests:detail:" + requestID)
}

func ListKey() Key {
	return Key("requests:list")
}

func AssignedKey(accountID string) Key {
	return Key("requests:assigned:" + accountID)
}

// Snapshot captures the exact cached state of one key before a speculative
// write, including whether the key was populated at all.
type Snapshot struct {
	Key     Key
	Request *types.Request
	Existed bool
}

// Cache is implemented by the in-memory store and the Redis store. Cache
// operations are best-effort: a failed cache call never fails the update flow.
type Cache interface {
	// GetRequest returns the cached copy for a detail key, if fresh.
	GetRequest(ctx context.Context, key Key) (*types.Request, bool)

	// Snapshot records the pre-call state of key for a later Rollback.
	Snapshot(ctx context.Context, key Key) Snapshot

	// SpeculativeWrite replaces the cached copy before persistence resolves.
	SpeculativeWrite(ctx context.Context, key Key, request *types.Request)

	// Rollback restores the exact snapshotted state.
	Rollback(ctx context.Context, snapshot Snapshot)

	// Invalidate marks keys stale so the next read re-fetches.
	Invalidate(ctx context.Context, keys ...Key)
}
