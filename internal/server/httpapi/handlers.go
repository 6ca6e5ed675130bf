package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/messagely/internal/api"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: username and password are required", common.ErrorValidation))
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: username, password, first_name, last_name and phone are required", common.ErrorValidation))
		return
	}

	token, err := s.users.RegisterAndLogin(c.Request.Context(), req.Registration())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.All(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.UsersResponse{Users: users})
}

func (s *Server) getUser(c *gin.Context) {
	u, err := s.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.UserResponse{User: u})
}

func (s *Server) messagesTo(c *gin.Context) {
	msgs, err := s.users.MessagesTo(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ReceivedMessagesResponse{Messages: msgs})
}

func (s *Server) messagesFrom(c *gin.Context) {
	msgs, err := s.users.MessagesFrom(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SentMessagesResponse{Messages: msgs})
}

func (s *Server) createMessage(c *gin.Context) {
	var req api.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: to_username and body are required", common.ErrorValidation))
		return
	}

	m, err := s.messages.Create(c.Request.Context(), caller(c), req.ToUsername, req.Body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CreatedMessageResponse{Message: m})
}

func (s *Server) getMessage(c *gin.Context) {
	id, ok := s.messageID(c)
	if !ok {
		return
	}

	m, err := s.messages.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.guard.RequireParticipant(caller(c), m); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageDetailResponse{Message: m})
}

func (s *Server) markRead(c *gin.Context) {
	id, ok := s.messageID(c)
	if !ok {
		return
	}

	m, err := s.messages.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.guard.RequireRecipient(caller(c), m); err != nil {
		s.writeError(c, err)
		return
	}

	rr, err := s.messages.MarkRead(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ReadReceiptResponse{Message: rr})
}

func (s *Server) messageID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: malformed message id %q", common.ErrorValidation, c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
