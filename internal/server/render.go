package server

import (
	"net/http"

	"outreach/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	session := sessionFromContext(r.Context())

	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{}
		if session != nil {
			navbar.IsAuthenticated = true
			navbar.UserID = session.AccountID
			navbar.UserEmail = session.Email
			navbar.UserName = session.FullName
			navbar.Role = session.Role
		}
		setter.SetNavbarData(navbar)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}
