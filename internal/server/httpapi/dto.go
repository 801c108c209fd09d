package httpapi

import (
	"strings"
	"time"
	"unicode"

	"github.com/okarpov/articles-api/internal/model"
	"github.com/okarpov/articles-api/internal/service"
)

type registerRequest struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// validate returns the first violated constraint, mirroring the single-message
// validation contract of the API.
func (r registerRequest) validate() string {
	if strings.TrimSpace(r.Login) == "" {
		return "login should not be empty"
	}
	if msg := validatePassword(r.Password); msg != "" {
		return msg
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return "firstName should not be empty"
	}
	if strings.TrimSpace(r.LastName) == "" {
		return "lastName should not be empty"
	}
	return ""
}

func (r registerRequest) toInput() service.RegisterInput {
	return service.RegisterInput{
		Login:     r.Login,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

const passwordSpecials = "@$!%*?&"

func validatePassword(p string) string {
	if len(p) < 8 {
		return "Password must be at least 8 characters long"
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r loginRequest) validate() string {
	if strings.TrimSpace(r.Login) == "" {
		return "login should not be empty"
	}
	if r.Password == "" {
		return "password should not be empty"
	}
	return ""
}

type createArticleRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (r createArticleRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title should not be empty"
	}
	if r.Description != nil && *r.Description == "" {
		return "description should not be empty"
	}
	if r.PublishedAt == nil {
		return "publishedAt should not be empty"
	}
	return ""
}

func (r createArticleRequest) toModel() model.CreateArticle {
	return model.CreateArticle{
		Title:       r.Title,
		Description: r.Description,
		PublishedAt: *r.PublishedAt,
	}
}

type updateArticleRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func (r updateArticleRequest) validate() string {
	if r.Title == nil && r.Description == nil && r.PublishedAt == nil {
		return "at least one field must be provided"
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return "title should not be empty"
	}
	return ""
}

func (r updateArticleRequest) toModel() model.UpdateArticle {
	return model.UpdateArticle{
		Title:       r.Title,
		Description: r.Description,
		PublishedAt: r.PublishedAt,
	}
}
