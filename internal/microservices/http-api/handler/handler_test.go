package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"podcasthub/internal/microservices/http-api/models"
	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var (
	ownerA    = policy.Principal{ID: "a@x.com", Role: policy.RolePodcaster}
	ownerB    = policy.Principal{ID: "b@x.com", Role: policy.RolePodcaster}
	listenerL = policy.Principal{ID: "l@x.com", Role: policy.RoleListener}
	adminP    = policy.Principal{ID: "admin@podcasthub.com", Role: policy.RoleAdmin}
)

type HandlerSuite struct {
	suite.Suite
	auth     *MockAuthService
	podcasts *MockPodcastService
	episodes *MockEpisodeService
	comments *MockCommentService
	subs     *MockSubscriptionService
	users    *MockUserService
	router   *gin.Engine
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.auth = &MockAuthService{tokens: map[string]policy.Principal{
		"token-a": ownerA, "token-b": ownerB, "token-l": listenerL, "token-admin": adminP,
	}}
	s.podcasts = new(MockPodcastService)
	s.episodes = new(MockEpisodeService)
	s.comments = new(MockCommentService)
	s.subs = new(MockSubscriptionService)
	s.users = new(MockUserService)
	s.router, _ = NewRouter(Services{
		Auth: s.auth, Podcasts: s.podcasts, Episodes: s.episodes,
		Comments: s.comments, Subscriptions: s.subs, Users: s.users,
	}, RouterOptions{
		AccessTokenTTL:      15 * time.Minute,
		PopularDefaultCount: 20,
		AuthRateLimit:       100,
		AuthRateBurst:       100,
	})
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestPublicListing() {
	s.podcasts.On("List", mock.Anything).Return([]models.Podcast{{ID: 1, Title: "Moonshot", CreatorID: ownerA.ID}}, nil)

	w := s.do(http.MethodGet, "/api/podcasts", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"title":"Moonshot"`)
}

func (s *HandlerSuite) TestAnonymousWriteIsUnauthorized() {
	w := s.do(http.MethodPost, "/api/podcasts", "", map[string]string{"title": "Mine"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.podcasts.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestBadTokenOnPublicRoute() {
	w := s.do(http.MethodGet, "/api/podcasts", "forged", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestPodcastUpdate_NonOwnerForbidden() {
	s.podcasts.On("Update", mock.Anything, ownerB, int64(1), service.PodcastInput{Title: "Mine now"}).
		Return(nil, &policy.DeniedError{Reason: policy.ReasonOwnership, Message: "You can only edit your own podcasts."})

	w := s.do(http.MethodPut, "/api/podcasts/1", "token-b", map[string]string{"title": "Mine now"})
	s.Equal(http.StatusForbidden, w.Code)
	body := decode(s.T(), w)
	s.Equal("You can only edit your own podcasts.", body["error"])
	s.Equal("ownership", body["reason"])
}

func (s *HandlerSuite) TestPodcastCreate() {
	s.podcasts.On("Create", mock.Anything, ownerA, service.PodcastInput{Title: "Moonshot", Description: "Space"}).
		Return(&models.Podcast{ID: 7, Title: "Moonshot", CreatorID: ownerA.ID}, nil)

	w := s.do(http.MethodPost, "/api/podcasts", "token-a", map[string]string{"title": "Moonshot", "description": "Space"})
	s.Equal(http.StatusCreated, w.Code)
	s.Equal(float64(7), decode(s.T(), w)["id"])
}

func (s *HandlerSuite) TestInvalidID() {
	w := s.do(http.MethodGet, "/api/podcasts/abc", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestEpisodeNotFound() {
	s.episodes.On("Details", mock.Anything, int64(404)).Return(nil, policy.ErrNotFound)

	w := s.do(http.MethodGet, "/api/episodes/404", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestPopularUsesConfiguredDefault() {
	s.episodes.On("Popular", mock.Anything, 20).Return([]models.Episode{{ID: 1}}, nil)
	s.episodes.On("Popular", mock.Anything, 5).Return([]models.Episode{}, nil)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/episodes/popular", "", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/episodes/popular?count=5", "", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/episodes/popular?count=0", "", nil).Code)
}

func (s *HandlerSuite) TestSearchRejectsUnknownType() {
	s.episodes.On("Search", mock.Anything, "moon", service.SearchType("genre")).Return(nil, service.ErrInvalidSearchType)

	w := s.do(http.MethodGet, "/api/episodes/search?q=moon&type=genre", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestBrowseIncludesWholeToDay() {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	s.episodes.On("Browse", mock.Anything, mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal)).
		Return([]service.PodcastWithEpisodes{}, nil)

	w := s.do(http.MethodGet, "/api/episodes?from=2025-03-01&to=2025-03-02", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/episodes?from=yesterday", "", nil).Code)
}

func (s *HandlerSuite) TestPlayCounter() {
	s.episodes.On("RecordPlay", mock.Anything, int64(3)).Return(nil)

	w := s.do(http.MethodPost, "/api/episodes/3/play", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.episodes.AssertExpectations(s.T())
}

func multipartEpisode(t *testing.T, fields map[string]string, audio []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if audio != nil {
		part, err := mw.CreateFormFile("audio", "pilot.mp3")
		require.NoError(t, err)
		_, err = part.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *HandlerSuite) postEpisode(token string, fields map[string]string, audio []byte) *httptest.ResponseRecorder {
	body, contentType := multipartEpisode(s.T(), fields, audio)
	req := httptest.NewRequest(http.MethodPost, "/api/episodes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestEpisodeCreate_RequiresAudio() {
	w := s.postEpisode("token-a", map[string]string{"podcast_id": "1", "title": "Pilot"}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.episodes.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestEpisodeCreate_UploadFailureIsBadGateway() {
	s.episodes.On("Create", mock.Anything, ownerA, mock.Anything).
		Return(nil, errors.Join(service.ErrAudioUpload, errors.New("bucket down")))

	w := s.postEpisode("token-a", map[string]string{"podcast_id": "1", "title": "Pilot"}, []byte("ID3"))
	s.Equal(http.StatusBadGateway, w.Code)
}

func (s *HandlerSuite) TestEpisodeCreate_PassesFormThrough() {
	s.episodes.On("Create", mock.Anything, ownerA, mock.MatchedBy(func(in service.EpisodeInput) bool {
		return in.PodcastID == 1 && in.Title == "Pilot" && in.DurationSeconds == 90 &&
			in.ReleaseDate.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)) &&
			in.Audio != nil && in.Audio.Filename == "pilot.mp3"
	})).Return(&models.Episode{ID: 12, PodcastID: 1, Title: "Pilot"}, nil)

	w := s.postEpisode("token-a", map[string]string{
		"podcast_id": "1", "title": "Pilot", "duration_seconds": "90", "release_date": "2025-03-09",
	}, []byte("ID3"))
	s.Equal(http.StatusCreated, w.Code)
	s.Equal(float64(12), decode(s.T(), w)["id"])
}

func (s *HandlerSuite) TestCommentEdit_WindowExpired() {
	s.comments.On("Update", mock.Anything, listenerL, int64(9), "edited").Return(nil, &policy.DeniedError{
		Reason:   policy.ReasonEditWindowExpired,
		Message:  "Comments can only be edited within 24 hours of posting. This comment was posted 25 hours ago.",
		HoursAgo: 25,
	})

	w := s.do(http.MethodPut, "/api/comments/9", "token-l", map[string]string{"text": "edited"})
	s.Equal(http.StatusForbidden, w.Code)
	body := decode(s.T(), w)
	s.Equal("edit_window_expired", body["reason"])
	s.Equal(float64(25), body["hours_ago"])
}

func (s *HandlerSuite) TestCommentList_CarriesEditState() {
	s.comments.On("ListForEpisode", mock.Anything, listenerL, int64(5)).Return([]service.CommentView{
		{Comment: models.Comment{ID: 1, Text: "hi"}, Editable: true, EditHoursRemaining: 20},
	}, nil)

	w := s.do(http.MethodGet, "/api/episodes/5/comments", "token-l", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"editable":true`)
	s.Contains(w.Body.String(), `"edit_hours_remaining":20`)
}

func (s *HandlerSuite) TestSubscribe_RepeatIsOK() {
	sub := &models.Subscription{ID: 3, UserID: listenerL.ID, PodcastID: 1}
	s.subs.On("Subscribe", mock.Anything, listenerL, int64(1)).Return(sub, nil).Once()
	s.subs.On("Subscribe", mock.Anything, listenerL, int64(1)).Return(sub, service.ErrAlreadySubscribed).Once()

	first := s.do(http.MethodPost, "/api/podcasts/1/subscription", "token-l", nil)
	s.Equal(http.StatusCreated, first.Code)

	again := s.do(http.MethodPost, "/api/podcasts/1/subscription", "token-l", nil)
	s.Equal(http.StatusOK, again.Code)
	s.Equal(true, decode(s.T(), again)["already_subscribed"])
}

func (s *HandlerSuite) TestAdminRoutes() {
	s.users.On("Dashboard", mock.Anything, adminP).Return(&service.Dashboard{
		TotalUsers: 10, UsersByRole: map[policy.Role]int64{policy.RoleListener: 5},
	}, nil)

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/admin/dashboard", "token-a", nil).Code)
	anon := s.do(http.MethodGet, "/api/admin/dashboard", "", nil)
	s.Equal(http.StatusUnauthorized, anon.Code)
	s.Equal("missing authorization header", decode(s.T(), anon)["error"])
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/users", "forged", nil).Code)

	w := s.do(http.MethodGet, "/api/admin/dashboard", "token-admin", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"Listener":5`)
}

func (s *HandlerSuite) TestAdminSelfDeleteDenied() {
	s.users.On("Delete", mock.Anything, adminP, adminP.ID).
		Return(&policy.DeniedError{Reason: policy.ReasonSelfTarget, Message: "You cannot delete your own account."})

	w := s.do(http.MethodDelete, "/api/admin/users/"+adminP.ID, "token-admin", nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("self_target", decode(s.T(), w)["reason"])
}

func (s *HandlerSuite) TestLogin() {
	s.auth.On("Login", mock.Anything, "l@x.com", "Listener123!").
		Return("access", "refresh", &models.User{ID: "l@x.com", Role: policy.RoleListener}, nil)
	s.auth.On("Login", mock.Anything, "l@x.com", "wrong").Return("", "", nil, service.ErrInvalidCredentials)

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "l@x.com", "password": "Listener123!"})
	s.Equal(http.StatusOK, w.Code)
	body := decode(s.T(), w)
	s.Equal("access", body["access_token"])
	s.Equal(float64(900), body["expires_in"])

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "l@x.com", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestRegister() {
	s.auth.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Role == policy.RolePodcaster
	})).Return(&models.User{ID: "new@x.com", Role: policy.RolePodcaster}, nil)
	s.auth.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Role == policy.RoleAdmin
	})).Return(nil, service.ErrRoleNotAllowed)

	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@x.com", "password": "Password123!", "role": "podcaster",
	})
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@x.com", "password": "Password123!", "role": "Admin",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", &policy.DeniedError{Reason: policy.ReasonUnauthenticated}, http.StatusUnauthorized},
		{"ownership", &policy.DeniedError{Reason: policy.ReasonOwnership}, http.StatusForbidden},
		{"not found", policy.ErrNotFound, http.StatusNotFound},
		{"email in use", service.ErrEmailInUse, http.StatusConflict},
		{"too large", service.ErrAudioTooLarge, http.StatusRequestEntityTooLarge},
		{"validation", service.ErrInvalidComment, http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, strings.Contains(w.Body.String(), "boom"), "internal errors are not leaked")
		})
	}
}

func TestCheckConn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := true
	router, _ := NewRouter(Services{Auth: &MockAuthService{}}, RouterOptions{
		AuthRateLimit: 1,
		AuthRateBurst: 1,
		Ping: func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("postgres: connection refused")
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check-conn", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	healthy = false
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check-conn", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
