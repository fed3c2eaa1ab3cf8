package server

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"outreach/internal"
	"outreach/internal/authn"
	"outreach/pkg/types"
)

func (s *Service) handleGetSignIn(w http.ResponseWriter, r *http.Request) {
	data := &types.SignInPageData{
		BasePageData: types.BasePageData{Title: "Sign In"},
	}

	err := s.renderTemplate(w, r, "page.signin", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render signin page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.SignInPageData{
		BasePageData: types.BasePageData{Title: "Sign In"},
		Email:        email,
	}

	tokens, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		data.Error = "Invalid email or password."
		if renderErr := s.renderTemplate(w, r, "page.signin", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render signin page with error")
			s.internalServerError(w)
		}
		return
	}

	session, err := s.verifier.VerifySession(ctx, tokens.IDToken)
	if err != nil {
		s.logger.WithError(err).Error("issued token failed verification")
		s.internalServerError(w)
		return
	}

	if err := s.setSessionCookie(w, tokens); err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.internalServerError(w)
		return
	}

	// a pending admin lands on the waiting page, not the app
	if session.Role == types.RoleAdmin && !session.IsActive {
		http.Redirect(w, r, "/pending-approval", http.StatusSeeOther)
		return
	}

	// honor the pre-signin redirect if this was an unauthed bounce
	redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME)
	if err == nil {
		path := redirectCookie.Value
		s.clearRedirectCookie(w)
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) handleSignOut(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	if session != nil {
		if err := s.provider.SignOut(r.Context(), session.Email); err != nil {
			s.logger.WithError(err).Warn("provider sign out failed")
		}
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type signUpForm struct {
	FullName        string `form:"full_name"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	Zone            string `form:"zone"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`

	// volunteer fields
	Skills       string `form:"skills"`
	Availability string `form:"availability"`
	Vehicle      string `form:"vehicle"`

	// donor fields
	ForEvents    bool `form:"for_events"`
	ForOutreachs bool `form:"for_outreachs"`

	// admin field
	SecretKey string `form:"secret_key"`
}

func signUpTemplate(role types.Role) string {
	switch role {
	case types.RoleVolunteer:
		return "page.signup.volunteer"
	case types.RoleAdmin:
		return "page.signup.admin"
	case types.RoleDonor:
		return "page.signup.donor"
	default:
		return "page.signup.user"
	}
}

func (s *Service) handleGetSignUp(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &types.SignUpPageData{
			BasePageData: types.BasePageData{Title: "Create Account"},
			Role:         role,
		}

		err := s.renderTemplate(w, r, signUpTemplate(role), data)
		if err != nil {
			s.logger.WithError(err).Error("failed to render signup page")
			s.internalServerError(w)
		}
	}
}

func (s *Service) handlePostSignUp(role types.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		var input signUpForm
		if err := decoder.Decode(&input, r.PostForm); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		input.FullName = strings.TrimSpace(input.FullName)
		input.Email = strings.TrimSpace(input.Email)
		input.Phone = strings.TrimSpace(input.Phone)

		data := &types.SignUpPageData{
			BasePageData: types.BasePageData{Title: "Create Account"},
			Role:         role,
			FullName:     input.FullName,
			Email:        input.Email,
			Phone:        input.Phone,
			Zone:         input.Zone,
		}

		data.FieldErrors = validateSignUpInput(input)
		if len(data.FieldErrors) > 0 {
			data.Error = "Please fix the highlighted fields."
			if err := s.renderTemplate(w, r, signUpTemplate(role), data); err != nil {
				s.logger.WithError(err).Error("failed to render signup page with validation errors")
				s.internalServerError(w)
			}
			return
		}

		metadata := types.AccountMetadata{
			FullName: input.FullName,
			Phone:    input.Phone,
			Zone:     input.Zone,
			Role:     role,
			IsActive: true,
		}

		switch role {
		case types.RoleVolunteer:
			metadata.Skills = input.Skills
			metadata.Availability = input.Availability
			metadata.Vehicle = input.Vehicle
		case types.RoleDonor:
			metadata.ForEvents = input.ForEvents
			metadata.ForOutreachs = input.ForOutreachs
		case types.RoleAdmin:
			// admins start locked out unless they present the shared secret
			metadata.IsActive = s.config.AdminSecretKey != "" && input.SecretKey == s.config.AdminSecretKey
		}

		_, err := s.provider.SignUp(ctx, authn.SignUpInput{
			Email:    input.Email,
			Password: input.Password,
			Metadata: metadata,
		})
		if err != nil {
			data.Error, data.FieldErrors = mapSignUpError(err)
			if renderErr := s.renderTemplate(w, r, signUpTemplate(role), data); renderErr != nil {
				s.logger.WithError(renderErr).Error("failed to render signup page with provider error")
				s.internalServerError(w)
			}
			return
		}

		if role == types.RoleAdmin && !metadata.IsActive {
			http.Redirect(w, r, "/pending-approval", http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, "/signin", http.StatusSeeOther)
	}
}

func (s *Service) handlePendingApproval(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Awaiting Approval"},
	}

	err := s.renderTemplate(w, r, "page.pending-approval", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render pending approval page")
		s.internalServerError(w)
	}
}

func (s *Service) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Not Authorized"},
	}

	w.WriteHeader(http.StatusForbidden)
	err := s.renderTemplate(w, r, "page.unauthorized", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render unauthorized page")
	}
}

func (s *Service) setSessionCookie(w http.ResponseWriter, tokens *authn.Tokens) error {
	encrypted, err := s.cookie.Encode(internal.COOKIE_ID_TOKEN_NAME, tokens.IDToken)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ID_TOKEN_NAME,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   tokens.ExpiresIn,
		Path:     "/",
	})
	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ID_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateSignUpInput(input signUpForm) map[string]string {
	errs := map[string]string{}

	if input.FullName == "" {
		errs["full_name"] = "Name is required."
	}

	if input.Email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if input.Password != input.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(input.Password)
	hasLower := hasLowerReg.MatchString(input.Password)
	hasDigit := hasDigitReg.MatchString(input.Password)
	hasSymbol := hasSymbolReg.MatchString(input.Password)

	if len(input.Password) < 12 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func mapSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	switch {
	case errors.Is(err, authn.ErrAccountExists):
		fieldErrs["email"] = "An account with this email already exists."
		return "Try signing in instead.", fieldErrs
	case errors.Is(err, authn.ErrWeakPassword):
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs
	}

	return "Unable to create account right now. Please try again.", fieldErrs
}
