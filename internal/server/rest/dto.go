package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eventhub/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserName string `json:"username"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	ImageURL    *string   `json:"imageUrl"`
	OwnerID     string    `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
}

type imageRequest struct {
	FileName string `json:"fileName"`
}

type imageResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

type registrationResponse struct {
	ID         string `json:"id"`
	EventID    string `json:"eventId"`
	EventTitle string `json:"eventTitle"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, UserName: u.UserName}
}

func (s *HTTPServer) toEventResponse(ctx context.Context, e *models.Event) eventResponse {
	r := eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.UTC(),
		Location:    e.Location,
		OwnerID:     e.OwnerID,
		OwnerName:   e.Owner.UserName,
	}
	if url := s.events.ImageURL(ctx, e); url != "" {
		r.ImageURL = &url
	}
	return r
}

func toRegistrationResponse(r *models.Registration) registrationResponse {
	return registrationResponse{
		ID:         r.ID,
		EventID:    r.EventID,
		EventTitle: r.Event.Title,
		UserID:     r.UserID,
		UserName:   r.User.UserName,
	}
}
