// Package workflow coordinates validated request updates: state-machine
// checks, proof uploads, the single persistence write and the optimistic
// cache reconciliation around it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"outreach/internal/cache"
	"outreach/internal/events"
	"outreach/internal/lifecycle"
	"outreach/internal/store"
	"outreach/internal/utils"
	"outreach/pkg/types"

	"github.com/sirupsen/logrus"
)

// RequestStore is the slice of the request repository the orchestrator needs.
type RequestStore interface {
	Request(ctx context.Context, requestID string) (*types.Request, error)
	UpdateByID(ctx context.Context, requestID string, patch map[string]any) error
}

// ProofUploader is implemented by the S3 storage client.
type ProofUploader interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error)
}

// ProofFile is one newly supplied proof-of-delivery photo.
type ProofFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// UpdateInput is the proposed change. Status must always be one of the
// defined enum values; the orchestrator never infers one.
type UpdateInput struct {
	RequestID string
	Status    types.RequestStatus
	Notes     string
	Proofs    []ProofFile
}

// UpdateResult reports the outcome of a successful or short-circuited update.
type UpdateResult struct {
	Request *types.Request
	// NoChange is set when the proposal matched the stored request exactly
	// and nothing was written.
	NoChange bool
}

type Orchestrator struct {
	requests   RequestStore
	uploader   ProofUploader
	cache      cache.Cache
	dispatcher events.Dispatcher
	logger     *logrus.Logger
}

func NewOrchestrator(
	requests RequestStore,
	uploader ProofUploader,
	requestCache cache.Cache,
	dispatcher events.Dispatcher,
	logger *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		requests:   requests,
		uploader:   uploader,
		cache:      requestCache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// UpdateRequest applies the proposed {status, notes, proofs} change on behalf
// of caller. Failures carry a types.UpdateFailureKind; the cached detail copy
// is speculatively updated up front and restored to the exact pre-call
// snapshot on any downstream failure.
func (o *Orchestrator) UpdateRequest(ctx context.Context, caller *types.Session, input UpdateInput) (*UpdateResult, error) {

	// 1. load
	stored, err := o.requests.Request(ctx, input.RequestID)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			return nil, types.NewUpdateError(types.FailureNotFound, err)
		}
		return nil, types.NewUpdateError(types.FailureStorage, err)
	}

	// 2. a volunteer cannot deliver with no proof at all
	isVolunteer := caller != nil && caller.Role == types.RoleVolunteer
	proofCount := len(stored.ProofURLs) + len(input.Proofs)
	if isVolunteer && input.Status == types.StatusDelivered && proofCount == 0 {
		return nil, types.NewUpdateError(types.FailureProofRequired, lifecycle.ErrProofRequired)
	}

	// 3. remaining state-machine rules, including the delivered lock
	err = lifecycle.Validate(lifecycle.Transition{
		Caller:     caller,
		Current:    stored.Status,
		Proposed:   input.Status,
		AssignedTo: stored.AssignedTo,
		ProofCount: proofCount,
	})
	if err != nil {
		return nil, types.NewUpdateError(failureKindOfTransition(err), err)
	}

	// 4. no-op guard: nothing changed, nothing written
	if input.Status == stored.Status &&
		input.Notes == utils.PtrString(stored.Notes) &&
		len(input.Proofs) == 0 {
		return &UpdateResult{Request: stored, NoChange: true}, nil
	}

	// speculative cache write before anything network-bound resolves
	detailKey := cache.DetailKey(input.RequestID)
	snapshot := o.cache.Snapshot(ctx, detailKey)

	speculative := stored.Clone()
	speculative.Status = input.Status
	speculative.Notes = utils.StringPtr(input.Notes)
	o.cache.SpeculativeWrite(ctx, detailKey, speculative)

	// 5. upload new proofs, preserving input order, appending to the stored
	// list; existing photos are never removed here
	proofURLs := stored.ProofURLs
	if len(input.Proofs) > 0 {
		uploaded, err := o.uploadProofs(ctx, input.RequestID, input.Proofs)
		if err != nil {
			o.cache.Rollback(ctx, snapshot)
			return nil, types.NewUpdateError(types.FailureStorage, err)
		}
		proofURLs = append(append([]string{}, stored.ProofURLs...), uploaded...)

		speculative.ProofURLs = proofURLs
		o.cache.SpeculativeWrite(ctx, detailKey, speculative)
	}

	// 6. single update-by-id
	patch := map[string]any{
		"status": input.Status,
		"notes":  input.Notes,
	}
	if len(input.Proofs) > 0 {
		patch["proof_urls"] = proofURLs
	}

	if err := o.requests.UpdateByID(ctx, input.RequestID, patch); err != nil {
		o.cache.Rollback(ctx, snapshot)
		if store.IsPermissionDenied(err) {
			return nil, types.NewUpdateError(types.FailureForbidden, err)
		}
		return nil, types.NewUpdateError(types.FailureStorage, err)
	}

	// 7. reconcile: the detail copy is already speculative-current; list and
	// assigned views go stale so the next read re-fetches
	staleKeys := []cache.Key{cache.ListKey()}
	if caller != nil {
		staleKeys = append(staleKeys, cache.AssignedKey(caller.AccountID))
	}
	o.cache.Invalidate(ctx, staleKeys...)

	if input.Status != stored.Status {
		o.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventRequestStatusChanged,
			RequestID: input.RequestID,
			ActorID:   callerID(caller),
			Detail:    fmt.Sprintf("%s -> %s", stored.Status, input.Status),
		})
	}

	updated := speculative.Clone()
	updated.UpdatedAt = time.Now()

	return &UpdateResult{Request: updated}, nil
}

func (o *Orchestrator) uploadProofs(ctx context.Context, requestID string, proofs []ProofFile) ([]string, error) {
	urls := make([]string, 0, len(proofs))

	for _, proof := range proofs {
		ext := strings.TrimPrefix(filepath.Ext(proof.Name), ".")
		if ext == "" {
			ext = "jpg"
		}

		path := fmt.Sprintf("requests/%s/%d-%s.%s",
			requestID, time.Now().UnixMilli(), utils.NanoIDSize(7), strings.ToLower(ext))

		url, err := o.uploader.Upload(ctx, path, proof.ContentType, proof.Data)
		if err != nil {
			return nil, fmt.Errorf("upload proof %s: %w", proof.Name, err)
		}

		o.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       path,
		}).Debug("proof photo uploaded")

		urls = append(urls, url)
	}

	return urls, nil
}

func failureKindOfTransition(err error) types.UpdateFailureKind {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidStatus):
		return types.FailureInvalidStatus
	case errors.Is(err, lifecycle.ErrProofRequired):
		return types.FailureProofRequired
	default:
		return types.FailureForbidden
	}
}

func callerID(caller *types.Session) string {
	if caller == nil {
		return ""
	}
	return caller.AccountID
}
