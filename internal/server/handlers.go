package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/models"
	chatrouter "pk-market-chat/internal/workers/ai-conversation/chat-router"
	"pk-market-chat/internal/web"
)

const maxBodyBytes = 1 << 20

func (s *Server) chat(c *gin.Context) {
	log := requestLogger(c, s.logger)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read body", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unable to read request body"})
		return
	}

	res, err := chatRequestSchema.ValidateBytes(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Request body must be valid JSON"})
		return
	}
	if verr := res.Err("ChatRequest"); verr != nil {
		log.Warn("chat request rejected", map[string]interface{}{"errors": res.Errors})
		c.JSON(http.StatusBadRequest, gin.H{"detail": verr.Error()})
		return
	}

	req := models.NewChatRequest()
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Request body must be valid JSON"})
		return
	}
	req.ApplyDefaults()

	reply, err := s.router.Route(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, chatrouter.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": apperrors.AsStandardError(err).Message})
			return
		}
		log.Error("chat routing failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Response: reply.Text})
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) ready(c *gin.Context) {
	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(c.Request.Context()); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		requestLogger(c, s.logger).Warn("readiness check failed", map[string]interface{}{"failures": failures})
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
