// Package api defines the JSON bodies of the HTTP API. The server binds
// requests into these types and the terminal client decodes responses from
// them, so both sides agree on the wire format.
package api

import "github.com/dmitrijs2005/messagely/internal/models"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

// Registration converts the request into the service-level record.
func (r RegisterRequest) Registration() models.Registration {
	return models.Registration{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

type SendMessageRequest struct {
	ToUsername string `json:"to_username" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UsersResponse struct {
	Users []models.UserSummary `json:"users"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type SentMessagesResponse struct {
	Messages []models.SentMessage `json:"messages"`
}

type ReceivedMessagesResponse struct {
	Messages []models.ReceivedMessage `json:"messages"`
}

type CreatedMessageResponse struct {
	Message *models.Message `json:"message"`
}

type MessageDetailResponse struct {
	Message *models.MessageDetail `json:"message"`
}

type ReadReceiptResponse struct {
	Message *models.ReadReceipt `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
