package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cosmic/model"
	"cosmic/storage"
)

const (
	// HistoryPageSize is the default page size of the chat history route.
	HistoryPageSize = 20
	maxHistoryPage  = 100
	recentActivity  = 5
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse carries a freshly issued token next to the account.
type authResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	Data    *storage.User `json:"data"`
}

func (s *Server) register(c *gin.Context) {
	if s.tokens == nil {
		writeError(c, http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Validation failed")
		return
	}

	ctx := c.Request.Context()
	user, err := s.store.CreateUser(ctx, req.Username, req.Email, req.Password)
	if errors.Is(err, storage.ErrUserExists) {
		writeError(c, http.StatusBadRequest, "User with this email or username already exists")
		return
	}
	if err != nil {
		s.internalError(c, "Server error during registration", err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.internalError(c, "Server error during registration", err)
		return
	}

	s.logger.Info("[Server] user registered", "user", user.ID)
	c.JSON(http.StatusCreated, authResponse{Success: true, Token: token, Data: user})
}

func (s *Server) login(c *gin.Context) {
	if s.tokens == nil {
		writeError(c, http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Validation failed")
		return
	}

	ctx := c.Request.Context()
	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		s.internalError(c, "Server error during login", err)
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		writeError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.internalError(c, "Server error during login", err)
		return
	}
	if err := s.store.TouchLogin(ctx, user.ID); err != nil {
		s.internalError(c, "Server error during login", err)
		return
	}
	if refreshed, err := s.store.UserByID(ctx, user.ID); err == nil {
		user = refreshed
	}

	c.JSON(http.StatusOK, authResponse{Success: true, Token: token, Data: user})
}

// currentAccount loads the account behind the bearer token. Tokens minted
// for ids with no account get 404.
func (s *Server) currentAccount(c *gin.Context, failure string) *storage.User {
	user, err := s.store.UserByID(c.Request.Context(), currentUser(c))
	if errors.Is(err, storage.ErrUserNotFound) {
		writeError(c, http.StatusNotFound, "User not found")
		return nil
	}
	if err != nil {
		s.internalError(c, failure, err)
		return nil
	}
	return user
}

func (s *Server) me(c *gin.Context) {
	if user := s.currentAccount(c, "Server error retrieving user data"); user != nil {
		writeData(c, http.StatusOK, user)
	}
}

func (s *Server) userStats(c *gin.Context) {
	user := s.currentAccount(c, "Failed to retrieve user statistics")
	if user == nil {
		return
	}

	ctx := c.Request.Context()
	stats, err := s.store.Stats(ctx, user.ID)
	if err != nil {
		s.internalError(c, "Failed to retrieve user statistics", err)
		return
	}
	recent, err := s.store.List(ctx, user.ID, recentActivity)
	if err != nil {
		s.internalError(c, "Failed to retrieve user statistics", err)
		return
	}

	var avg float64
	if stats.TotalSessions > 0 {
		avg = math.Round(float64(stats.TotalMessages) / float64(stats.TotalSessions))
	}

	writeData(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"memberSince": user.CreatedAt,
			"lastLogin":   user.LastLogin,
		},
		"chatStats": gin.H{
			"totalSessions":         stats.TotalSessions,
			"totalMessages":         stats.TotalMessages,
			"avgMessagesPerSession": int(avg),
		},
		"recentActivity": recent,
	})
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is missing or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) chatHistory(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := min(queryInt(c, "limit", HistoryPageSize), maxHistoryPage)

	var tag model.ContextTag
	if raw := c.Query("context"); raw != "" {
		tag = model.ParseContextTag(raw)
		if !tag.Valid() {
			writeError(c, http.StatusBadRequest, "Unknown context: "+raw)
			return
		}
	}

	sessions, total, err := s.store.Page(c.Request.Context(), currentUser(c), tag, (page-1)*limit, limit)
	if err != nil {
		s.internalError(c, "Failed to retrieve chat history", err)
		return
	}

	writeData(c, http.StatusOK, gin.H{
		"sessions": sessions,
		"pagination": gin.H{
			"current": page,
			"pages":   (total + limit - 1) / limit,
			"total":   total,
		},
	})
}

func (s *Server) exportData(c *gin.Context) {
	user := s.currentAccount(c, "Failed to export user data")
	if user == nil {
		return
	}

	sessions, err := s.store.Export(c.Request.Context(), user.ID)
	if err != nil {
		s.internalError(c, "Failed to export user data", err)
		return
	}

	now := s.now()
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="agi-cosmic-data-%s-%d.json"`, user.Username, now.UnixMilli()))
	writeData(c, http.StatusOK, gin.H{
		"user":         user,
		"chatSessions": sessions,
		"exportedAt":   now.UTC(),
	})
	s.logger.Info("[Server] user data exported", "user", user.ID, "sessions", len(sessions))
}

type deleteDataRequest struct {
	ConfirmDelete bool `json:"confirmDelete"`
}

func (s *Server) deleteData(c *gin.Context) {
	var req deleteDataRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if !req.ConfirmDelete {
		writeError(c, http.StatusBadRequest, "Please confirm deletion by setting confirmDelete to true")
		return
	}

	user := currentUser(c)
	if err := s.store.DeleteUserData(c.Request.Context(), user); err != nil {
		s.internalError(c, "Failed to delete user data", err)
		return
	}

	s.logger.Info("[Server] user data deleted", "user", user)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "All user data has been permanently deleted"})
}
