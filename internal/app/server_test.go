package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/admin"
	"bookmarked_backend/internal/auth"
	"bookmarked_backend/internal/bookshelf"
	"bookmarked_backend/internal/catalog"
	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/platform/database"
	"bookmarked_backend/internal/platform/metrics"
	"bookmarked_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubProvider struct {
	ext identity.External
}

func (p *stubProvider) Name() string { return auth.ProviderGoogle }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *stubProvider) Exchange(context.Context, string) (*identity.External, error) {
	ext := p.ext
	return &ext, nil
}

type stubCatalog struct{}

func (stubCatalog) Search(context.Context, url.Values) (json.RawMessage, error) {
	return json.RawMessage(`{"numFound":0,"docs":[]}`), nil
}

// browser replays cookies across requests.
type browser struct {
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (b *browser) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Origin", "http://localhost:5173")
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
		} else {
			b.cookies[ck.Name] = ck
		}
	}
	return w
}

func (b *browser) login() *httptest.ResponseRecorder {
	start := b.do(http.MethodGet, "/auth/google", "")
	loc, _ := url.Parse(start.Header().Get("Location"))
	return b.do(http.MethodGet, "/auth/google/callback?code=c&state="+url.QueryEscape(loc.Query().Get("state")), "")
}

type ServerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	cfg      *config.Config
	accounts *account.ServiceImplementation
	metrics  *metrics.Metrics
	provider *stubProvider
	router   *gin.Engine
}

func (s *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	db, err := database.NewSQLiteInMemory()
	s.Require().NoError(err)
	s.Require().NoError(AutoMigrate(db))
	s.db = db

	s.cfg = &config.Config{
		GinMode:                  gin.TestMode,
		LogLevel:                 "error",
		FrontendURL:              "http://localhost:5173",
		CORSAllowedOrigins:       []string{"http://localhost:5173"},
		OAuthStateCookieName:     "oauth_state",
		OAuthCookieMaxAgeMinutes: 10,
		SessionMode:              config.SessionModeCookie,
		SessionSecret:            "test-secret",
		SessionCookieName:        "bookmarked.sid",
		SessionTTL:               time.Hour,
		StagedTTL:                time.Hour,
	}
	logger := zap.NewNop()
	s.metrics = metrics.New()
	s.provider = &stubProvider{ext: identity.External{Provider: auth.ProviderGoogle, Subject: "g-1", Email: "jane@example.com"}}

	accountRepo := account.NewGORMRepository(db)
	shelfRepo := bookshelf.NewGORMRepository(db)
	shelves := bookshelf.NewService(shelfRepo, logger)
	s.accounts = account.NewService(accountRepo, []account.OwnedRecordsPurger{shelfRepo}, events.NoopPublisher{}, logger)
	provisioning := auth.NewProvisioningService(accountRepo, events.NoopPublisher{}, s.metrics, logger)

	issuer, err := session.NewIssuer(s.cfg, session.NewMemoryStore(time.Minute), session.NewInMemoryBlocklistService(time.Minute), logger)
	s.Require().NoError(err)

	handlers := Handlers{
		Auth:      auth.NewHandler(s.cfg, s.provider, provisioning, s.accounts, issuer, s.metrics, logger),
		Bookshelf: bookshelf.NewHandler(shelves, logger),
		Admin:     admin.NewHandler(s.accounts, shelves, logger),
		Catalog:   catalog.NewHandler(stubCatalog{}, logger),
	}
	s.router = NewRouter(s.cfg, logger, handlers, issuer, provisioning, s.metrics)
}

func (s *ServerTestSuite) TearDownTest() {
	database.CloseGORMDB(s.db)
}

func (s *ServerTestSuite) newBrowser() *browser {
	return &browser{router: s.router, cookies: map[string]*http.Cookie{}}
}

func (s *ServerTestSuite) TestHealthAndMetrics() {
	b := s.newBrowser()
	w := b.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "UP")

	w = b.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "http_requests_total")
}

func (s *ServerTestSuite) TestCORSAllowsFrontendWithCredentials() {
	b := s.newBrowser()
	w := b.do(http.MethodGet, "/health", "")
	s.Equal("http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func (s *ServerTestSuite) TestUnknownRoute() {
	w := s.newBrowser().do(http.MethodGet, "/nowhere", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "NOT_FOUND")
}

func (s *ServerTestSuite) TestReaderJourney() {
	b := s.newBrowser()

	// Anonymous readers can search but not shelve.
	s.Equal(http.StatusOK, b.do(http.MethodGet, "/api/search-books?q=dune", "").Code)
	s.Equal(http.StatusUnauthorized, b.do(http.MethodGet, "/api/bookshelf", "").Code)

	w := b.login()
	s.Equal("http://localhost:5173/create-profile", w.Header().Get("Location"))
	s.Equal(1.0, s.metrics.ProvisioningCount(metrics.OutcomeStaged))

	// Staged identities hold no role.
	s.Equal(http.StatusUnauthorized, b.do(http.MethodGet, "/api/bookshelf", "").Code)
	s.Equal(http.StatusUnauthorized, b.do(http.MethodGet, "/api/admin/stats", "").Code)

	w = b.do(http.MethodPost, "/auth/create-profile", `{"nickname":"Jane"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = b.do(http.MethodPost, "/api/bookshelf/add", `{"bookId":"OL45804W","title":"Fantastic Mr Fox","authors":["Roald Dahl"]}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(http.StatusOK, b.do(http.MethodGet, "/api/bookshelf", "").Code)

	// Standard accounts are not admins.
	s.Equal(http.StatusForbidden, b.do(http.MethodGet, "/api/admin/stats", "").Code)

	_, err := s.accounts.PromoteByEmail(context.Background(), "jane@example.com")
	s.Require().NoError(err)

	w = b.do(http.MethodGet, "/api/admin/stats", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var stats struct {
		Data admin.StatsResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	s.Equal(admin.StatsResponse{TotalUsers: 1, TotalBooks: 1}, stats.Data)

	// Deleting the account takes the shelf with it and ends the session.
	s.Equal(http.StatusOK, b.do(http.MethodDelete, "/auth/delete-account", "").Code)
	var remaining int64
	s.Require().NoError(s.db.Model(&bookshelf.Entry{}).Count(&remaining).Error)
	s.Zero(remaining)
	s.Equal("null", strings.TrimSpace(b.do(http.MethodGet, "/auth/user", "").Body.String()))

	// The same Google identity starts onboarding from scratch.
	w = b.login()
	s.Equal("http://localhost:5173/create-profile", w.Header().Get("Location"))
}

func (s *ServerTestSuite) TestDeletedAccountSessionIsDropped() {
	jane := s.newBrowser()
	jane.login()
	jane.do(http.MethodPost, "/auth/create-profile", `{"nickname":"Jane"}`)

	s.provider.ext = identity.External{Provider: auth.ProviderGoogle, Subject: "g-admin", Email: "admin@example.com"}
	adminBrowser := s.newBrowser()
	adminBrowser.login()
	adminBrowser.do(http.MethodPost, "/auth/create-profile", `{"nickname":"Admin"}`)
	_, err := s.accounts.PromoteByEmail(context.Background(), "admin@example.com")
	s.Require().NoError(err)

	w := adminBrowser.do(http.MethodGet, "/api/admin/users", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var users struct {
		Data []account.Response `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &users))
	s.Require().Len(users.Data, 2)

	var janeID string
	for _, u := range users.Data {
		if u.Email == "jane@example.com" {
			janeID = u.ID.String()
		}
	}
	s.Require().NotEmpty(janeID)
	s.Equal(http.StatusOK, adminBrowser.do(http.MethodDelete, "/api/admin/users/"+janeID, "").Code)

	// Jane's session still exists but no longer resolves to anyone.
	s.Equal(http.StatusUnauthorized, jane.do(http.MethodGet, "/api/bookshelf", "").Code)
	s.Equal("null", strings.TrimSpace(jane.do(http.MethodGet, "/auth/user", "").Body.String()))
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
