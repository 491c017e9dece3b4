package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"daylog/internal/auth"
	"daylog/internal/domain"
	"daylog/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	days   service.DayService
	codec  *auth.Codec
	logger *logrus.Logger
}

func NewHandler(users service.UserService, days service.DayService, codec *auth.Codec, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		days:   days,
		codec:  codec,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		protected := api.Group("")
		protected.Use(AuthRequired(h.codec))
		{
			protected.GET("/account", h.account)
			protected.POST("/register-day", h.registerDay)
			protected.GET("/user-days/:user_id/:year", h.userDays)
			protected.GET("/leaderboard/:year", h.leaderboard)
		}
	}
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerDayRequest struct {
	Date    string `json:"date" binding:"required"`
	Level   int    `json:"level"`
	Comment string `json:"comment"`
}

type userResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type dayResponse struct {
	Date    string `json:"date"`
	Level   int    `json:"level"`
	Comment string `json:"comment,omitempty"`
}

type leaderboardRowResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TrackedDays int64  `json:"tracked_days"`
	TotalDays   int64  `json:"total_days"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		default:
			h.internalError(c, "register user", err)
		}
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		} else {
			h.internalError(c, "login", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) account(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.internalError(c, "load account", err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) registerDay(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req registerDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return
	}

	if err := h.days.RegisterDay(c.Request.Context(), claims.UserID, req.Date, req.Level, req.Comment); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		} else {
			h.internalError(c, "register day", err)
		}
		return
	}

	c.JSON(http.StatusOK, true)
}

func (h *Handler) userDays(c *gin.Context) {
	userID := c.Param("user_id")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return
	}

	days, err := h.days.UserDays(c.Request.Context(), userID, year)
	if err != nil {
		h.internalError(c, "list user days", err)
		return
	}

	resp := make([]dayResponse, len(days))
	for i := range days {
		resp[i] = dayResponse{
			Date:    days[i].Date,
			Level:   days[i].Level,
			Comment: days[i].Comment,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) leaderboard(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return
	}

	board, err := h.days.Leaderboard(c.Request.Context(), year)
	if err != nil {
		h.internalError(c, "load leaderboard", err)
		return
	}

	resp := make([]leaderboardRowResponse, len(board))
	for i := range board {
		resp[i] = leaderboardRowResponse{
			UserID:      board[i].UserID,
			DisplayName: board[i].DisplayName,
			TrackedDays: board[i].TrackedDays,
			TotalDays:   board[i].TotalDays,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// internalError logs the cause server-side and answers with a generic
// message; store and crypto failures never reach the client verbatim.
func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.WithError(err).Errorf("%s failed", op)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}
}
