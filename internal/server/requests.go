package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"outreach/internal/assign"
	"outreach/internal/events"
	"outreach/internal/lifecycle"
	"outreach/internal/workflow"
	"outreach/pkg/types"
)

const (
	triageListLimit   = 100
	maxProofUploadMem = 10 << 20 // 10 MiB in memory, rest spools to disk
)

func (s *Service) handleRequestList(w http.ResponseWriter, r *http.Request) {
	requests, err := s.requestsRepo.Requests(r.Context(), triageListLimit)
	if err != nil {
		s.logger.WithError(err).Error("failed to load request list")
		s.internalServerError(w)
		return
	}

	data := &types.RequestListPageData{
		BasePageData: types.BasePageData{Title: "Requests"},
		Requests:     requests,
	}

	if err := s.renderTemplate(w, r, "page.request-list", data); err != nil {
		s.logger.WithError(err).Error("failed to render request list page")
		s.internalServerError(w)
	}
}

func (s *Service) handleRequestDetail(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")

	request, err := s.requestsRepo.Request(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to load request")
		s.internalServerError(w)
		return
	}

	data := &types.RequestDetailPageData{
		BasePageData: types.BasePageData{Title: request.RequestNumber},
		Request:      request,
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		Statuses:     lifecycle.Statuses(),
	}

	// admins get the volunteer picker prefilled and the audit trail
	session := sessionFromContext(r.Context())
	if session.HasAdminCapability() {
		volunteers, err := s.assignEngine.Search(r.Context(), "")
		if err != nil {
			s.logger.WithError(err).Warn("failed to preload volunteer candidates")
		}
		data.Volunteers = volunteers

		history, err := s.historyRepo.EventsByRequest(r.Context(), requestID)
		if err != nil {
			s.logger.WithError(err).Warn("failed to load request history")
		}
		data.History = history
	}

	if err := s.renderTemplate(w, r, "page.request-detail", data); err != nil {
		s.logger.WithError(err).Error("failed to render request detail page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostRequestUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.PathValue("id")

	if err := r.ParseMultipartForm(maxProofUploadMem); err != nil {
		s.redirectToDetail(w, r, requestID, "", "Could not read the submitted form.")
		return
	}

	input := workflow.UpdateInput{
		RequestID: requestID,
		Status:    types.RequestStatus(r.FormValue("status")),
		Notes:     r.FormValue("notes"),
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["proofs"] {
			file, err := header.Open()
			if err != nil {
				s.logger.WithError(err).Error("failed to open uploaded proof")
				s.redirectToDetail(w, r, requestID, "", "Could not read an uploaded photo.")
				return
			}
			defer file.Close()

			input.Proofs = append(input.Proofs, workflow.ProofFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        file,
			})
		}
	}

	session := sessionFromContext(ctx)

	result, err := s.orchestrator.UpdateRequest(ctx, session, input)
	if err != nil {
		s.logger.WithError(err).WithField("request_id", requestID).Info("request update rejected")
		s.redirectToDetail(w, r, requestID, "", updateFailureMessage(err))
		return
	}

	if result.NoChange {
		s.redirectToDetail(w, r, requestID, "Nothing to save.", "")
		return
	}

	s.redirectToDetail(w, r, requestID, "Request updated.", "")
}

func (s *Service) handlePostAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := r.PathValue("id")

	session := sessionFromContext(ctx)
	if !session.HasAdminCapability() {
		http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
		return
	}

	volunteerID := r.FormValue("volunteer_id")

	err := s.assignEngine.Assign(ctx, requestID, volunteerID)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to assign request")
		s.redirectToDetail(w, r, requestID, "", "Could not assign the volunteer. Please try again.")
		return
	}

	// assignment implies the assigned status unless the request moved past it
	request, err := s.requestsRepo.Request(ctx, requestID)
	if err == nil && request.Status == types.StatusRequested {
		patch := map[string]any{"status": types.StatusAssigned}
		if err := s.requestsRepo.UpdateByID(ctx, requestID, patch); err != nil {
			s.logger.WithError(err).Warn("failed to advance status after assignment")
		}
	}

	s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventRequestAssigned,
		RequestID: requestID,
		ActorID:   session.AccountID,
		Detail:    "assigned to " + volunteerID,
		Timestamp: time.Now(),
	})

	s.redirectToDetail(w, r, requestID, "Volunteer assigned.", "")
}

// handleVolunteerSearch backs the admin assignment picker. Calls are debounced
// per admin so per-keystroke queries coalesce; a superseded call returns 204
// and the client keeps the newer response.
func (s *Service) handleVolunteerSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := sessionFromContext(ctx)
	if !session.HasAdminCapability() {
		s.writeJSONError(w, http.StatusForbidden, "admin only")
		return
	}

	term := r.URL.Query().Get("q")

	var volunteers []*types.User
	err := s.searcher.Do(ctx, session.AccountID, func(ctx context.Context) error {
		var searchErr error
		volunteers, searchErr = s.assignEngine.Search(ctx, term)
		return searchErr
	})
	if err != nil {
		if errors.Is(err, assign.ErrSuperseded) || errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.WithError(err).Error("volunteer search failed")
		s.writeJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"volunteers": volunteers,
	})
}

func (s *Service) handleVolunteerDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	requests, err := s.requestsRepo.RequestsAssignedTo(ctx, session.AccountID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load assigned requests")
		s.internalServerError(w)
		return
	}

	data := &types.VolunteerDashboardPageData{
		BasePageData: types.BasePageData{Title: "My Assignments"},
		Requests:     requests,
	}

	if err := s.renderTemplate(w, r, "page.volunteer-dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render volunteer dashboard")
		s.internalServerError(w)
	}
}

func (s *Service) redirectToDetail(w http.ResponseWriter, r *http.Request, requestID, notice, errMsg string) {
	v := url.Values{}
	if notice != "" {
		v.Set("notice", notice)
	}
	if errMsg != "" {
		v.Set("error", errMsg)
	}

	target := "/requests/" + requestID
	if encoded := v.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func updateFailureMessage(err error) string {
	switch types.FailureKindOf(err) {
	case types.FailureNotFound:
		return "This request no longer exists."
	case types.FailureForbidden:
		return "You are not allowed to make that change."
	case types.FailureProofRequired:
		return "Add at least one delivery photo before marking delivered."
	case types.FailureInvalidStatus:
		return "That status is not recognized."
	case types.FailureStorage:
		return "Could not save your change. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
