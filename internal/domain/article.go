package domain

import (
	"time"
)

const ArticleDefaultLanguage = "english"

// Article is a stored news article. The groups tags pick the fields of the
// list and detail representations.
type Article struct {
	ID          int64     `json:"id" db:"id" groups:"list,detail"`
	Title       string    `json:"title" db:"title" groups:"list,detail"`
	Subtitle    string    `json:"subtitle,omitempty" db:"subtitle" groups:"detail"`
	Content     string    `json:"content" db:"content" groups:"detail"`
	Author      *string   `json:"author" db:"author" groups:"list,detail"`
	Description string    `json:"description,omitempty" db:"description" groups:"detail"`
	URL         string    `json:"url,omitempty" db:"url" groups:"detail"`
	Language    string    `json:"language" db:"language" groups:"list,detail"`
	Category    string    `json:"category,omitempty" db:"category" groups:"list,detail"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" groups:"list,detail"`
}

// ArticleInput is the body of a create request.
type ArticleInput struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Subtitle    string  `json:"subtitle" validate:"max=300"`
	Content     string  `json:"content" validate:"required"`
	Author      *string `json:"author"`
	Description string  `json:"description"`
	URL         string  `json:"url" validate:"omitempty,url"`
	Language    string  `json:"language" validate:"omitempty,oneof=english russian serbian"`
	Category    string  `json:"category"`
}

// Columns maps the input onto table columns.
func (in ArticleInput) Columns() map[string]any {
	lang := in.Language
	if lang == "" {
		lang = ArticleDefaultLanguage
	}
	return map[string]any{
		"title":       in.Title,
		"subtitle":    in.Subtitle,
		"content":     in.Content,
		"author":      in.Author,
		"description": in.Description,
		"url":         in.URL,
		"language":    lang,
		"category":    in.Category,
	}
}
