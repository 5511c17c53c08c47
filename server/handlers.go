package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cosmic/assistant"
	"cosmic/model"
	"cosmic/storage"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Error: msg})
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: msg})
}

func (s *Server) health(c *gin.Context) {
	writeData(c, http.StatusOK, gin.H{
		"status":    "ok",
		"provider":  s.svc.Status().Provider,
		"timestamp": s.now().UTC(),
	})
}

func (s *Server) aiStatus(c *gin.Context) {
	writeData(c, http.StatusOK, s.svc.CheckHealth(c.Request.Context()))
}

func (s *Server) aiProviders(c *gin.Context) {
	writeData(c, http.StatusOK, gin.H{
		"current":   s.svc.Status().Provider,
		"available": s.svc.AvailableProviders(),
	})
}

type testRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

func (s *Server) aiTest(c *gin.Context) {
	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "Message is required")
		return
	}

	tag := model.ParseContextTag(req.Context)
	start := s.now()
	res, err := s.svc.Respond(c.Request.Context(),
		[]model.Message{{Role: model.RoleUser, Content: req.Message, Timestamp: start}},
		tag, model.Overrides{})
	if err != nil {
		s.respondError(c, err)
		return
	}

	writeData(c, http.StatusOK, gin.H{
		"response":     res.Content,
		"responseTime": s.now().Sub(start).Milliseconds(),
		"provider":     s.svc.Status().Provider,
		"model":        res.Model,
		"context":      tag,
	})
}

func (s *Server) planetInfo(c *gin.Context) {
	name := c.Param("name")
	writeData(c, http.StatusOK, gin.H{
		"planet":      name,
		"description": s.svc.PlanetFact(name),
		"timestamp":   s.now().UTC(),
	})
}

type settingsRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   int      `json:"maxTokens"`
}

type createSessionRequest struct {
	Title    string          `json:"title"`
	Context  string          `json:"context"`
	Settings settingsRequest `json:"settings"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	tag := model.ParseContextTag(req.Context)
	if !tag.Valid() {
		writeError(c, http.StatusBadRequest, "Unknown context: "+string(tag))
		return
	}

	settings := storage.DefaultSettings()
	if req.Settings.Model != "" {
		settings.Model = req.Settings.Model
	}
	if req.Settings.Temperature != nil {
		settings.Temperature = *req.Settings.Temperature
	}
	if req.Settings.MaxTokens > 0 {
		settings.MaxTokens = req.Settings.MaxTokens
	}

	session, err := s.store.Create(c.Request.Context(), currentUser(c), req.Title, tag, settings)
	if err != nil {
		s.internalError(c, "Failed to create chat session", err)
		return
	}

	writeData(c, http.StatusCreated, gin.H{
		"sessionId": session.ID,
		"title":     session.Title,
		"context":   session.Context,
		"settings":  session.Settings,
		"createdAt": session.CreatedAt,
	})
}

// loadOwned loads the session named in the path and checks that the caller
// may see it. It writes the error response itself and returns nil on failure.
func (s *Server) loadOwned(c *gin.Context) *storage.Session {
	session, err := s.store.Load(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(c, http.StatusNotFound, "Chat session not found")
		return nil
	}
	if err != nil {
		s.internalError(c, "Failed to retrieve chat session", err)
		return nil
	}
	if !canAccess(session, currentUser(c)) {
		writeError(c, http.StatusForbidden, "Access denied to this chat session")
		return nil
	}
	return session
}

// canAccess reports whether user may read or modify session. Anonymous
// sessions are open to everyone.
func canAccess(session *storage.Session, user string) bool {
	return session.UserID == "" || session.UserID == user
}

func (s *Server) getSession(c *gin.Context) {
	session := s.loadOwned(c)
	if session == nil {
		return
	}

	writeData(c, http.StatusOK, gin.H{
		"sessionId":    session.ID,
		"title":        session.Title,
		"messages":     session.Messages,
		"context":      session.Context,
		"settings":     session.Settings,
		"messageCount": len(session.Messages),
		"lastActivity": session.LastActivity,
		"createdAt":    session.CreatedAt,
	})
}

type sendMessageRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

func (r sendMessageRequest) text() string {
	if strings.TrimSpace(r.Message) != "" {
		return strings.TrimSpace(r.Message)
	}
	return strings.TrimSpace(r.Content)
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.text() == "" {
		writeError(c, http.StatusBadRequest, "Message content is required")
		return
	}

	session := s.loadOwned(c)
	if session == nil {
		return
	}
	ctx := c.Request.Context()

	start := s.now()
	userMsg := storage.Message{Role: model.RoleUser, Content: req.text(), Timestamp: start}
	if err := s.store.AppendMessages(ctx, session.ID, userMsg); err != nil {
		s.internalError(c, "Failed to process message", err)
		return
	}

	history, err := s.store.History(ctx, session.ID, assistant.HistoryWindow)
	if err != nil {
		s.internalError(c, "Failed to process message", err)
		return
	}

	temperature := session.Settings.Temperature
	res, err := s.svc.Respond(ctx, history, session.Context, model.Overrides{
		Model:       session.Settings.Model,
		Temperature: &temperature,
		MaxTokens:   session.Settings.MaxTokens,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	elapsed := s.now().Sub(start)
	reply := storage.Message{
		Role:      model.RoleAssistant,
		Content:   res.Content,
		Timestamp: s.now(),
		Metadata: &storage.MessageMetadata{
			Model:          res.Model,
			Tokens:         res.TokensUsed,
			ResponseTimeMs: elapsed.Milliseconds(),
			Context:        session.Context,
		},
	}
	if err := s.store.AppendMessages(ctx, session.ID, reply); err != nil {
		s.internalError(c, "Failed to process message", err)
		return
	}

	writeData(c, http.StatusOK, gin.H{
		"sessionId":    session.ID,
		"message":      res.Content,
		"model":        res.Model,
		"tokens":       res.TokensUsed,
		"context":      session.Context,
		"responseTime": elapsed.Milliseconds(),
		"messageCount": len(session.Messages) + 2,
	})
}

func (s *Server) listSessions(c *gin.Context) {
	sessions, err := s.store.List(c.Request.Context(), currentUser(c), SessionListLimit)
	if err != nil {
		s.internalError(c, "Failed to retrieve chat sessions", err)
		return
	}
	writeData(c, http.StatusOK, sessions)
}

func (s *Server) deleteSession(c *gin.Context) {
	session := s.loadOwned(c)
	if session == nil {
		return
	}

	if err := s.store.Delete(c.Request.Context(), session.ID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			writeError(c, http.StatusNotFound, "Chat session not found")
			return
		}
		s.internalError(c, "Failed to delete chat session", err)
		return
	}

	c.JSON(http.StatusOK, envelope{Success: true, Message: "Chat session deleted successfully"})
}

// respondError maps errors returned by the assistant. Only validation
// errors are expected; anything else is a server fault.
func (s *Server) respondError(c *gin.Context, err error) {
	var verr *assistant.ValidationError
	if errors.As(err, &verr) {
		writeError(c, http.StatusBadRequest, verr.Reason)
		return
	}
	s.internalError(c, "Failed to process message", err)
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	s.logger.Error("[Server] "+msg, "path", c.Request.URL.Path, "error", err)
	writeError(c, http.StatusInternalServerError, msg)
}
