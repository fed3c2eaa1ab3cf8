package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"outreach/internal/cache"
	"outreach/internal/events"
	"outreach/internal/lifecycle"
	"outreach/internal/utils"
	"outreach/pkg/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

type fakeRequestStore struct {
	requests map[string]*types.Request

	updateErr   error
	updateCalls int
	lastPatch   map[string]any
}

func (f *fakeRequestStore) Request(_ context.Context, requestID string) (*types.Request, error) {
	request, ok := f.requests[requestID]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	return request.Clone(), nil
}

func (f *fakeRequestStore) UpdateByID(_ context.Context, requestID string, patch map[string]any) error {
	f.updateCalls++
	f.lastPatch = patch
	if f.updateErr != nil {
		return f.updateErr
	}

	request := f.requests[requestID]
	if status, ok := patch["status"].(types.RequestStatus); ok {
		request.Status = status
	}
	if notes, ok := patch["notes"].(string); ok {
		request.Notes = utils.StringPtr(notes)
	}
	if urls, ok := patch["proof_urls"].([]string); ok {
		request.ProofURLs = urls
	}
	return nil
}

type fakeUploader struct {
	uploads []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, path, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, body)
	f.uploads = append(f.uploads, path)
	return "https://cdn.example.com/" + path, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestOrchestrator(requests *fakeRequestStore, uploader *fakeUploader) (*Orchestrator, *cache.Memory) {
	memory := cache.NewMemory()
	return NewOrchestrator(requests, uploader, memory, events.NewInMemoryDispatcher(), testLogger()), memory
}

func storedRequest(status types.RequestStatus, assignedTo string, proofs ...string) *types.Request {
	request := &types.Request{
		ID:            "req-1",
		RequestNumber: "REQ-000001",
		Status:        status,
		Notes:         utils.StringPtr("call before arriving"),
		ProofURLs:     proofs,
	}
	if assignedTo != "" {
		request.AssignedTo = &assignedTo
	}
	return request
}

func volunteer(id string) *types.Session {
	return &types.Session{AccountID: id, Role: types.RoleVolunteer, IsActive: true}
}

func admin() *types.Session {
	return &types.Session{AccountID: "admin-1", Role: types.RoleAdmin, IsActive: true}
}

func proofFile(name string) ProofFile {
	return ProofFile{Name: name, ContentType: "image/jpeg", Data: bytes.NewReader([]byte("jpeg-bytes"))}
}

func wantKind(t *testing.T, err error, kind types.UpdateFailureKind) {
	t.Helper()
	if types.FailureKindOf(err) != kind {
		t.Fatalf("failure kind = %s, want %s (err: %v)", types.FailureKindOf(err), kind, err)
	}
}

func TestUpdateRequest_NotFound(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{}}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	_, err := orch.UpdateRequest(context.Background(), admin(), UpdateInput{
		RequestID: "missing",
		Status:    types.StatusCancelled,
	})
	wantKind(t, err, types.FailureNotFound)
}

func TestUpdateRequest_VolunteerNotAssigneeIsForbiddenForEveryStatus(t *testing.T) {
	for _, proposed := range lifecycle.Statuses() {
		requests := &fakeRequestStore{requests: map[string]*types.Request{
			"req-1": storedRequest(types.StatusAssigned, "vol-1", "https://cdn.example.com/p.jpg"),
		}}
		orch, _ := newTestOrchestrator(requests, &fakeUploader{})

		_, err := orch.UpdateRequest(context.Background(), volunteer("vol-2"), UpdateInput{
			RequestID: "req-1",
			Status:    proposed,
			Notes:     "trying anyway",
		})
		wantKind(t, err, types.FailureForbidden)
		if requests.updateCalls != 0 {
			t.Fatalf("proposed %s: store written despite forbidden caller", proposed)
		}
	}
}

func TestUpdateRequest_DeliveredWithoutProofFails(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusEnRoute, "vol-1"),
	}}
	orch, memory := newTestOrchestrator(requests, &fakeUploader{})

	_, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusDelivered,
		Notes:     "done",
	})
	wantKind(t, err, types.FailureProofRequired)

	if requests.updateCalls != 0 {
		t.Fatal("request mutated in storage despite proof failure")
	}
	if _, ok := memory.GetRequest(context.Background(), cache.DetailKey("req-1")); ok {
		t.Fatal("cache touched before validation passed")
	}
}

func TestUpdateRequest_DeliveredWithNewProofSucceeds(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusEnRoute, "vol-1"),
	}}
	uploader := &fakeUploader{}
	orch, _ := newTestOrchestrator(requests, uploader)

	result, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusDelivered,
		Notes:     "left at the door",
		Proofs:    []ProofFile{proofFile("door.jpg")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Request.Status != types.StatusDelivered {
		t.Fatalf("status = %s, want delivered", result.Request.Status)
	}
	if len(result.Request.ProofURLs) != 1 {
		t.Fatalf("proof urls = %d, want 1", len(result.Request.ProofURLs))
	}
	if len(uploader.uploads) != 1 || !strings.HasPrefix(uploader.uploads[0], "requests/req-1/") {
		t.Fatalf("upload path = %v, want requests/req-1/ prefix", uploader.uploads)
	}

	stored := requests.requests["req-1"]
	if stored.Status != types.StatusDelivered || len(stored.ProofURLs) != 1 {
		t.Fatalf("stored request not persisted: %+v", stored)
	}
}

func TestUpdateRequest_DeliveredIsLockedAgainstVolunteers(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusDelivered, "vol-1", "https://cdn.example.com/p.jpg"),
	}}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	_, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "reopening",
	})
	wantKind(t, err, types.FailureForbidden)

	// admins may still change it
	result, err := orch.UpdateRequest(context.Background(), admin(), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "reopened by admin",
	})
	if err != nil {
		t.Fatalf("admin override failed: %v", err)
	}
	if result.Request.Status != types.StatusEnRoute {
		t.Fatalf("status = %s, want en_route", result.Request.Status)
	}
}

func TestUpdateRequest_NoChangeShortCircuits(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusPickedUp, "vol-1"),
	}}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	input := UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "on my way",
	}

	first, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), input)
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if first.NoChange {
		t.Fatal("first update unexpectedly reported no change")
	}
	if requests.updateCalls != 1 {
		t.Fatalf("update calls = %d, want 1", requests.updateCalls)
	}

	second, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), input)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if !second.NoChange {
		t.Fatal("identical update must report no change")
	}
	if requests.updateCalls != 1 {
		t.Fatalf("second identical update wrote to storage (%d calls)", requests.updateCalls)
	}
}

func TestUpdateRequest_InvalidStatusNeverLegal(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusAssigned, "vol-1"),
	}}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	for _, proposed := range []types.RequestStatus{"", "responded"} {
		_, err := orch.UpdateRequest(context.Background(), admin(), UpdateInput{
			RequestID: "req-1",
			Status:    proposed,
		})
		wantKind(t, err, types.FailureInvalidStatus)
	}
}

func TestUpdateRequest_ProofOrderPreserved(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusEnRoute, "vol-1", "https://cdn.example.com/existing.jpg"),
	}}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	result, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusDelivered,
		Notes:     "done",
		Proofs:    []ProofFile{proofFile("first.jpg"), proofFile("second.jpg"), proofFile("third.jpg")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	urls := result.Request.ProofURLs
	if len(urls) != 4 {
		t.Fatalf("proof urls = %d, want original + 3", len(urls))
	}
	if urls[0] != "https://cdn.example.com/existing.jpg" {
		t.Fatalf("existing proof not first: %v", urls)
	}
	for i, name := range []string{"first", "second", "third"} {
		if !strings.Contains(urls[i+1], "requests/req-1/") {
			t.Fatalf("uploaded url %d (%s) not scoped to request: %s", i+1, name, urls[i+1])
		}
	}
}

func TestUpdateRequest_PersistFailureRollsBackCache(t *testing.T) {
	stored := storedRequest(types.StatusPickedUp, "vol-1")
	requests := &fakeRequestStore{
		requests:  map[string]*types.Request{"req-1": stored},
		updateErr: errors.New("write timeout"),
	}
	orch, memory := newTestOrchestrator(requests, &fakeUploader{})

	// warm the cache with the pre-call copy
	ctx := context.Background()
	memory.SpeculativeWrite(ctx, cache.DetailKey("req-1"), stored)

	_, err := orch.UpdateRequest(ctx, volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "changed",
	})
	wantKind(t, err, types.FailureStorage)

	cached, ok := memory.GetRequest(ctx, cache.DetailKey("req-1"))
	if !ok {
		t.Fatal("cache entry lost after rollback")
	}
	if cached.Status != types.StatusPickedUp {
		t.Fatalf("cached status = %s, want pre-call %s", cached.Status, types.StatusPickedUp)
	}
	if utils.PtrString(cached.Notes) != "call before arriving" {
		t.Fatalf("cached notes = %q, want pre-call value", utils.PtrString(cached.Notes))
	}
}

func TestUpdateRequest_UploadFailureRollsBackAndSkipsPersist(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusEnRoute, "vol-1"),
	}}
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	orch, memory := newTestOrchestrator(requests, uploader)

	ctx := context.Background()
	_, err := orch.UpdateRequest(ctx, volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusDelivered,
		Notes:     "done",
		Proofs:    []ProofFile{proofFile("door.jpg")},
	})
	wantKind(t, err, types.FailureStorage)

	if requests.updateCalls != 0 {
		t.Fatal("persistence attempted after failed upload")
	}
	if _, ok := memory.GetRequest(ctx, cache.DetailKey("req-1")); ok {
		t.Fatal("speculative cache entry not rolled back")
	}
}

func TestUpdateRequest_PermissionDeniedMapsToForbidden(t *testing.T) {
	requests := &fakeRequestStore{
		requests:  map[string]*types.Request{"req-1": storedRequest(types.StatusPickedUp, "vol-1")},
		updateErr: &pgconn.PgError{Code: "42501"},
	}
	orch, _ := newTestOrchestrator(requests, &fakeUploader{})

	_, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "x",
	})
	wantKind(t, err, types.FailureForbidden)
}

func TestUpdateRequest_InvalidatesListAndAssignedCaches(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusPickedUp, "vol-1"),
	}}
	orch, memory := newTestOrchestrator(requests, &fakeUploader{})

	ctx := context.Background()
	memory.SpeculativeWrite(ctx, cache.ListKey(), storedRequest(types.StatusPickedUp, "vol-1"))
	memory.SpeculativeWrite(ctx, cache.AssignedKey("vol-1"), storedRequest(types.StatusPickedUp, "vol-1"))

	_, err := orch.UpdateRequest(ctx, volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "moving",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := memory.GetRequest(ctx, cache.ListKey()); ok {
		t.Fatal("list cache still fresh after update")
	}
	if _, ok := memory.GetRequest(ctx, cache.AssignedKey("vol-1")); ok {
		t.Fatal("assigned cache still fresh after update")
	}
	if _, ok := memory.GetRequest(ctx, cache.DetailKey("req-1")); !ok {
		t.Fatal("detail cache should hold the speculative copy after success")
	}
}

func TestUpdateRequest_EmitsStatusChangeEvent(t *testing.T) {
	requests := &fakeRequestStore{requests: map[string]*types.Request{
		"req-1": storedRequest(types.StatusPickedUp, "vol-1"),
	}}

	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventRequestStatusChanged, func(_ context.Context, event events.Event) {
		published = append(published, event)
	})

	orch := NewOrchestrator(requests, &fakeUploader{}, cache.NewMemory(), dispatcher, testLogger())

	_, err := orch.UpdateRequest(context.Background(), volunteer("vol-1"), UpdateInput{
		RequestID: "req-1",
		Status:    types.StatusEnRoute,
		Notes:     "moving",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(published) != 1 {
		t.Fatalf("events published = %d, want 1", len(published))
	}
	want := fmt.Sprintf("%s -> %s", types.StatusPickedUp, types.StatusEnRoute)
	if published[0].Detail != want {
		t.Fatalf("event detail = %q, want %q", published[0].Detail, want)
	}
}
