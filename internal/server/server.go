package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"outreach/internal/approval"
	"outreach/internal/assign"
	"outreach/internal/authn"
	"outreach/internal/events"
	"outreach/internal/policy"
	"outreach/internal/store"
	"outreach/internal/workflow"
	"outreach/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	provider authn.Provider
	verifier *authn.Verifier
	cookie   *securecookie.SecureCookie

	requestsRepo *store.RequestRepository
	assignees    policy.AssigneeLookup
	offersRepo   *store.SupportOfferRepository
	historyRepo  *store.RequestEventRepository

	orchestrator *workflow.Orchestrator
	assignEngine *assign.Engine
	searcher     *assign.Debouncer
	approvals    *approval.Service
	dispatcher   events.Dispatcher

	metrics *httpMetrics
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	provider authn.Provider,
	verifier *authn.Verifier,
	requestsRepo *store.RequestRepository,
	offersRepo *store.SupportOfferRepository,
	historyRepo *store.RequestEventRepository,
	orchestrator *workflow.Orchestrator,
	assignEngine *assign.Engine,
	approvals *approval.Service,
	dispatcher events.Dispatcher,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:   logger,
		config:   config,
		provider: provider,
		verifier: verifier,
		cookie:   securecookie.New(hashKey, blockKey),

		requestsRepo: requestsRepo,
		assignees:    requestsRepo,
		offersRepo:   offersRepo,
		historyRepo:  historyRepo,

		orchestrator: orchestrator,
		assignEngine: assignEngine,
		searcher:     assign.NewDebouncer(300 * time.Millisecond),
		approvals:    approvals,
		dispatcher:   dispatcher,

		metrics: newHTTPMetrics(),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.MetricsMiddleware)
	r.Use(s.WithSession)
	r.Use(s.RouteGuard)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/signin", s.handleGetSignIn, http.MethodGet)
	r.HandleFunc("/signin", s.handlePostSignIn, http.MethodPost)
	r.HandleFunc("/signout", s.handleSignOut, http.MethodPost)

	r.HandleFunc("/user-signup", s.handleGetSignUp(types.RoleUser), http.MethodGet)
	r.HandleFunc("/user-signup", s.handlePostSignUp(types.RoleUser), http.MethodPost)
	r.HandleFunc("/volunteer-signup", s.handleGetSignUp(types.RoleVolunteer), http.MethodGet)
	r.HandleFunc("/volunteer-signup", s.handlePostSignUp(types.RoleVolunteer), http.MethodPost)
	r.HandleFunc("/donor-signup", s.handleGetSignUp(types.RoleDonor), http.MethodGet)
	r.HandleFunc("/donor-signup", s.handlePostSignUp(types.RoleDonor), http.MethodPost)
	r.HandleFunc("/admin-signup", s.handleGetSignUp(types.RoleAdmin), http.MethodGet)
	r.HandleFunc("/admin-signup", s.handlePostSignUp(types.RoleAdmin), http.MethodPost)

	r.HandleFunc("/unauthorized", s.handleUnauthorized, http.MethodGet)
	r.HandleFunc("/pending-approval", s.handlePendingApproval, http.MethodGet)

	r.HandleFunc("/intake", s.handleGetIntake, http.MethodGet)
	r.HandleFunc("/intake", s.handlePostIntake, http.MethodPost)
	r.HandleFunc("/support-offer", s.handleGetSupportOffer, http.MethodGet)
	r.HandleFunc("/support-offer", s.handlePostSupportOffer, http.MethodPost)

	// guarded by the route policy
	r.HandleFunc("/request", s.handleRequestList, http.MethodGet)
	r.HandleFunc("/requests/:id", s.handleRequestDetail, http.MethodGet)
	r.HandleFunc("/requests/:id", s.handlePostRequestUpdate, http.MethodPost)
	r.HandleFunc("/requests/:id/assign", s.handlePostAssign, http.MethodPost)
	r.HandleFunc("/volunteer/dashboard", s.handleVolunteerDashboard, http.MethodGet)

	r.HandleFunc("/api/volunteers/search", s.handleVolunteerSearch, http.MethodGet)
	r.HandleFunc("/api/admin/pending-admins", s.handleListPendingAdmins, http.MethodGet)
	r.HandleFunc("/api/admin/approve-admin", s.handleApproveAdmin, http.MethodPost)
	r.HandleFunc("/api/auth/set-session", s.handleSetSession, http.MethodPost)
	r.HandleFunc("/api/auth/signout", s.handleAPISignOut, http.MethodPost)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
		"label": func(s string) string {
			s = strings.ReplaceAll(s, "_", " ")
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
