package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"outreach/internal/events"
	"outreach/internal/utils"
	"outreach/pkg/types"
)

var intakeZones = []string{
	"North", "South", "East", "West", "Central",
}

var intakeNeedTypes = []string{
	"food", "clothing", "medicine", "shelter", "transport", "other",
}

func (s *Service) handleGetIntake(w http.ResponseWriter, r *http.Request) {
	data := &types.IntakePageData{
		BasePageData: types.BasePageData{Title: "Request Help"},
		Zones:        intakeZones,
		NeedTypes:    intakeNeedTypes,
	}

	if err := s.renderTemplate(w, r, "page.intake", data); err != nil {
		s.logger.WithError(err).Error("failed to render intake page")
		s.internalServerError(w)
	}
}

type intakeForm struct {
	Title       string `form:"title"`
	NeedType    string `form:"need_type"`
	Zone        string `form:"zone"`
	Name        string `form:"name"`
	Email       string `form:"email"`
	Phone       string `form:"phone"`
	Location    string `form:"location"`
	Description string `form:"description"`
}

func (s *Service) handlePostIntake(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	var input intakeForm
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.NeedType = strings.TrimSpace(input.NeedType)

	if !required(input.Name) || !required(input.NeedType) {
		s.redirectWithError(w, r, "name and need type are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	request := &types.Request{
		RequestTitle:       utils.StringPtrOrNil(strings.TrimSpace(input.Title)),
		Status:             types.StatusRequested,
		NeedType:           input.NeedType,
		Zone:               input.Zone,
		Source:             "web",
		ContactName:        utils.StringPtr(input.Name),
		ContactEmail:       utils.StringPtrOrNil(strings.TrimSpace(input.Email)),
		ContactPhone:       utils.StringPtrOrNil(strings.TrimSpace(input.Phone)),
		ContactLocation:    utils.StringPtrOrNil(strings.TrimSpace(input.Location)),
		ContactDescription: utils.StringPtrOrNil(strings.TrimSpace(input.Description)),
	}

	if session := sessionFromContext(r.Context()); session != nil {
		request.SubmittedBy = utils.StringPtr(session.AccountID)
	}

	if err := s.requestsRepo.CreateRequest(ctx, request); err != nil {
		s.logger.WithError(err).Error("failed to create request")
		s.redirectWithError(w, r, "unable to submit your request")
		return
	}

	s.dispatcher.Publish(r.Context(), events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   utils.PtrString(request.SubmittedBy),
		Detail:    request.RequestNumber,
		Timestamp: time.Now(),
	})

	s.redirectWithNotice(w, r, "Request received. Reference "+request.RequestNumber)
}

func (s *Service) handleGetSupportOffer(w http.ResponseWriter, r *http.Request) {
	data := &types.SupportOfferPageData{
		BasePageData: types.BasePageData{Title: "Offer Support"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.support-offer", data); err != nil {
		s.logger.WithError(err).Error("failed to render support offer page")
		s.internalServerError(w)
	}
}

type supportOfferForm struct {
	Name         string `form:"name"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	DonationType string `form:"donation_type"`
	Availability string `form:"availability"`
	ForEvents    bool   `form:"for_events"`
	ForOutreachs bool   `form:"for_outreachs"`
}

func (s *Service) handlePostSupportOffer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	var input supportOfferForm
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.redirectWithError(w, r, "invalid form payload")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.DonationType = strings.TrimSpace(input.DonationType)

	if !required(input.Name) || !required(input.DonationType) {
		s.redirectWithError(w, r, "name and donation type are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	offer := &types.SupportOffer{
		Name:         input.Name,
		Email:        utils.StringPtrOrNil(strings.TrimSpace(input.Email)),
		Phone:        utils.StringPtrOrNil(strings.TrimSpace(input.Phone)),
		DonationType: input.DonationType,
		Availability: utils.StringPtrOrNil(strings.TrimSpace(input.Availability)),
		ForEvents:    input.ForEvents,
		ForOutreachs: input.ForOutreachs,
	}

	if session := sessionFromContext(r.Context()); session != nil {
		offer.AccountID = utils.StringPtr(session.AccountID)
	}

	if err := s.offersRepo.CreateSupportOffer(ctx, offer); err != nil {
		s.logger.WithError(err).Error("failed to create support offer")
		s.redirectWithError(w, r, "unable to submit your offer")
		return
	}

	s.redirectWithNotice(w, r, "Thank you! Your support offer was received.")
}
