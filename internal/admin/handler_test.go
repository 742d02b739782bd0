package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmarked_backend/internal/account"
	"bookmarked_backend/internal/common"
	"bookmarked_backend/internal/events"
	"bookmarked_backend/internal/identity"
	"bookmarked_backend/internal/middleware"
	"bookmarked_backend/internal/platform/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fixedCounter int64

func (f fixedCounter) Count(context.Context) (int64, error) { return int64(f), nil }

type HandlerTestSuite struct {
	suite.Suite
	repo   account.Repository
	admin  *account.Account
	reader *account.Account
	router func(principal *identity.Principal) *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	db, err := database.NewSQLiteInMemory()
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&account.Account{}))
	s.T().Cleanup(func() { database.CloseGORMDB(db) })

	s.repo = account.NewGORMRepository(db)
	s.admin = account.New("google", "g-admin", "admin@example.com", "", "Admin")
	s.admin.Role = account.RoleAdmin
	s.reader = account.New("google", "g-1", "jane@example.com", "", "Jane")
	s.Require().NoError(s.repo.Create(context.Background(), s.admin))
	s.Require().NoError(s.repo.Create(context.Background(), s.reader))

	handler := NewHandler(account.NewService(s.repo, nil, events.NoopPublisher{}, zap.NewNop()), fixedCounter(7), zap.NewNop())
	s.router = func(principal *identity.Principal) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if principal != nil {
				c.Set(common.PrincipalKey, principal)
			}
			c.Next()
		})
		handler.RegisterRoutes(r.Group("/api"), middleware.RequireAccount())
		return r
	}
}

func (s *HandlerTestSuite) serve(principal *identity.Principal, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router(principal).ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func (s *HandlerTestSuite) TestAccessControl() {
	staged := identity.StagedPrincipal(identity.NewStaged(identity.External{Provider: "google", Subject: "g-9", Email: "x@example.com"}))

	s.Equal(http.StatusUnauthorized, s.serve(nil, http.MethodGet, "/api/admin/stats").Code)
	s.Equal(http.StatusUnauthorized, s.serve(staged, http.MethodGet, "/api/admin/stats").Code)
	s.Equal(http.StatusForbidden, s.serve(identity.AccountPrincipal(s.reader), http.MethodGet, "/api/admin/stats").Code)
	s.Equal(http.StatusForbidden, s.serve(identity.AccountPrincipal(s.reader), http.MethodDelete, "/api/admin/users/"+s.admin.ID.String()).Code)
}

func (s *HandlerTestSuite) TestStats() {
	w := s.serve(identity.AccountPrincipal(s.admin), http.MethodGet, "/api/admin/stats")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data StatsResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(StatsResponse{TotalUsers: 2, TotalBooks: 7}, body.Data)
}

func (s *HandlerTestSuite) TestListUsers() {
	w := s.serve(identity.AccountPrincipal(s.admin), http.MethodGet, "/api/admin/users?page=1&page_size=1")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body common.PaginatedResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Len(body.Data, 1)
	s.Require().NotNil(body.Pagination)
	s.EqualValues(2, body.Pagination.TotalItems)
	s.Equal(2, body.Pagination.TotalPages)
}

func (s *HandlerTestSuite) TestDeleteUser() {
	admin := identity.AccountPrincipal(s.admin)

	s.Equal(http.StatusBadRequest, s.serve(admin, http.MethodDelete, "/api/admin/users/nope").Code)

	w := s.serve(admin, http.MethodDelete, "/api/admin/users/"+s.reader.ID.String())
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	s.Equal(http.StatusNotFound, s.serve(admin, http.MethodDelete, "/api/admin/users/"+s.reader.ID.String()).Code)

	n, err := s.repo.Count(context.Background())
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
