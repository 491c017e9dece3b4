package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"daylog/internal/auth"
	"daylog/internal/domain"
	"daylog/internal/service"
)

type stubUserService struct {
	registerFn func(ctx context.Context, username, password, displayName string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
	getByIDFn  func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, username, password, displayName)
	}
	return &domain.User{ID: "u1", Username: username, DisplayName: displayName}, nil
}

func (s *stubUserService) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, username, password)
	}
	return "", service.ErrInvalidCredentials
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &domain.User{ID: id, Username: "alice", DisplayName: "Alice A"}, nil
}

type stubDayService struct {
	registerDayFn func(ctx context.Context, userID, date string, level int, comment string) error
	leaderboardFn func(ctx context.Context, year int) ([]domain.LeaderboardRow, error)
}

func (s *stubDayService) RegisterDay(ctx context.Context, userID, date string, level int, comment string) error {
	if s.registerDayFn != nil {
		return s.registerDayFn(ctx, userID, date, level, comment)
	}
	return nil
}

func (s *stubDayService) UserDays(ctx context.Context, userID string, year int) ([]domain.Day, error) {
	return nil, nil
}

func (s *stubDayService) Leaderboard(ctx context.Context, year int) ([]domain.LeaderboardRow, error) {
	if s.leaderboardFn != nil {
		return s.leaderboardFn(ctx, year)
	}
	return nil, nil
}

func newCodec(t *testing.T, ttl time.Duration) *auth.Codec {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString([]byte("api-test-secret"))
	codec, err := auth.NewCodec(secret, ttl)
	require.NoError(t, err)
	return codec
}

func newTestRouter(t *testing.T, users service.UserService, days service.DayService, codec *auth.Codec) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(users, days, codec, nil).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthGate_RejectsMissingAndMalformedTokens(t *testing.T) {
	codec := newCodec(t, time.Hour)
	router := newTestRouter(t, &stubUserService{}, &stubDayService{}, codec)

	cases := map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic abc123",
		"empty bearer":  "Bearer ",
		"garbage token": "Bearer this-is-not-a-token",
	}
	for name, header := range cases {
		w := doJSON(router, http.MethodGet, "/api/account", header, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		require.JSONEq(t, `{"error":"invalid token"}`, w.Body.String(), name)
	}
}

func TestAuthGate_RejectsExpiredToken(t *testing.T) {
	expiredCodec := newCodec(t, -1*time.Second)
	token, err := expiredCodec.Issue("u1", "alice")
	require.NoError(t, err)

	router := newTestRouter(t, &stubUserService{}, &stubDayService{}, expiredCodec)
	w := doJSON(router, http.MethodGet, "/api/account", "Bearer "+token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())
}

func TestAuthGate_AdmitsValidTokenAndInjectsClaims(t *testing.T) {
	codec := newCodec(t, time.Hour)
	token, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	users := &stubUserService{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			require.Equal(t, "u1", id)
			return &domain.User{ID: id, Username: "alice", DisplayName: "Alice A"}, nil
		},
	}
	router := newTestRouter(t, users, &stubDayService{}, codec)

	w := doJSON(router, http.MethodGet, "/api/account", "Bearer "+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":"u1","username":"alice","display_name":"Alice A"}`, w.Body.String())
}

func TestRegisterEndpoint(t *testing.T) {
	codec := newCodec(t, time.Hour)

	t.Run("success", func(t *testing.T) {
		router := newTestRouter(t, &stubUserService{}, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
			"username": "Alice", "password": "secret123", "display_name": "Alice A",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"user_id":"u1","username":"Alice","display_name":"Alice A"}`, w.Body.String())
	})

	t.Run("already exists", func(t *testing.T) {
		users := &stubUserService{
			registerFn: func(ctx context.Context, username, password, displayName string) (*domain.User, error) {
				return nil, service.ErrUserAlreadyExists
			},
		}
		router := newTestRouter(t, users, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
			"username": "alice", "password": "secret123", "display_name": "Other",
		})
		require.Equal(t, http.StatusConflict, w.Code)
		require.JSONEq(t, `{"error":"user already exists"}`, w.Body.String())
	})

	t.Run("invalid data", func(t *testing.T) {
		users := &stubUserService{
			registerFn: func(ctx context.Context, username, password, displayName string) (*domain.User, error) {
				return nil, service.ErrInvalidInput
			},
		}
		router := newTestRouter(t, users, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{"username": " "})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure stays generic", func(t *testing.T) {
		users := &stubUserService{
			registerFn: func(ctx context.Context, username, password, displayName string) (*domain.User, error) {
				return nil, errors.New("connection refused to db host 10.0.0.5")
			},
		}
		router := newTestRouter(t, users, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
			"username": "Alice", "password": "secret123", "display_name": "Alice A",
		})
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	})
}

func TestLoginEndpoint(t *testing.T) {
	codec := newCodec(t, time.Hour)

	t.Run("success returns token", func(t *testing.T) {
		users := &stubUserService{
			loginFn: func(ctx context.Context, username, password string) (string, error) {
				return "issued-token", nil
			},
		}
		router := newTestRouter(t, users, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/login", "", gin.H{
			"username": "Alice", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"token":"issued-token"}`, w.Body.String())
	})

	t.Run("bad credentials are uniform", func(t *testing.T) {
		router := newTestRouter(t, &stubUserService{}, &stubDayService{}, codec)
		w := doJSON(router, http.MethodPost, "/api/login", "", gin.H{
			"username": "Alice", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
	})
}

func TestRegisterDayEndpoint_UsesTokenIdentity(t *testing.T) {
	codec := newCodec(t, time.Hour)
	token, err := codec.Issue("u42", "alice")
	require.NoError(t, err)

	var gotUserID string
	days := &stubDayService{
		registerDayFn: func(ctx context.Context, userID, date string, level int, comment string) error {
			gotUserID = userID
			return nil
		},
	}
	router := newTestRouter(t, &stubUserService{}, days, codec)

	w := doJSON(router, http.MethodPost, "/api/register-day", "Bearer "+token, gin.H{
		"date": "2026-03-15", "level": 1, "comment": "ok",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "u42", gotUserID)
}

func TestLeaderboardEndpoint(t *testing.T) {
	codec := newCodec(t, time.Hour)
	token, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	days := &stubDayService{
		leaderboardFn: func(ctx context.Context, year int) ([]domain.LeaderboardRow, error) {
			require.Equal(t, 2026, year)
			return []domain.LeaderboardRow{
				{UserID: "u1", DisplayName: "Alice A", TrackedDays: 10, TotalDays: 12},
				{UserID: "u2", DisplayName: "Bob B", TrackedDays: 4, TotalDays: 9},
			}, nil
		},
	}
	router := newTestRouter(t, &stubUserService{}, days, codec)

	w := doJSON(router, http.MethodGet, "/api/leaderboard/2026", "Bearer "+token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []leaderboardRowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "Alice A", rows[0].DisplayName)
	require.EqualValues(t, 10, rows[0].TrackedDays)
}
