package server

import (
	"strings"

	"agora/internal/models"
)

// Request bodies and their shape checks. Business rules live in the services;
// these only reject bodies that are missing required fields.

type registerRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

func (r registerRequest) validate() error {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return models.NewValidationError("Username, email, and password are required")
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return models.NewValidationError("Username and password are required")
	}
	return nil
}

type profileRequest struct {
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

func (r profileRequest) validate() error { return nil }

type postRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	ImageURL *string   `json:"image_url"`
	Tags     *[]string `json:"tags"`
}

func (r postRequest) validateCreate() error {
	if r.Title == nil || r.Content == nil {
		return models.NewValidationError("Title and content are required")
	}
	return nil
}

func (r postRequest) validatePatch() error {
	if r.Title == nil && r.Content == nil && r.ImageURL == nil && r.Tags == nil {
		return models.NewValidationError("No fields to update")
	}
	return nil
}

type commentRequest struct {
	Post    uint      `json:"post"`
	Content string    `json:"content"`
	Tags    *[]string `json:"tags"`
}

func (r commentRequest) validateCreate() error {
	if r.Post == 0 {
		return models.NewValidationError("post is required")
	}
	return r.validateUpdate()
}

func (r commentRequest) validateUpdate() error {
	if strings.TrimSpace(r.Content) == "" {
		return models.NewValidationError("Content is required")
	}
	return nil
}

type markReadRequest struct {
	IDs []uint `json:"ids"`
}

func (r markReadRequest) validate() error { return nil }

type bookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	Author          *uint   `json:"author"`
}

func (r bookRequest) validateCreate() error {
	if r.Title == nil || r.Author == nil {
		return models.NewValidationError("title and author are required")
	}
	return nil
}

func (r bookRequest) validatePatch() error {
	if r.Title == nil && r.PublicationYear == nil && r.Author == nil {
		return models.NewValidationError("No fields to update")
	}
	return nil
}

type nameRequest struct {
	Name string `json:"name"`
}

func (r nameRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return models.NewValidationError("name is required")
	}
	return nil
}
