package model

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	authorNameMin = 2
	authorNameMax = 100
)

// Author はブログ記事の著者を表す。IDは再利用されない。
type Author struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorInput は著者の作成・更新リクエストボディ。
// Imageが空の場合は送信しない。
type AuthorInput struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Normalize は前後の空白を除去した入力を返す。
func (in AuthorInput) Normalize() AuthorInput {
	return AuthorInput{
		Name:  strings.TrimSpace(in.Name),
		Image: strings.TrimSpace(in.Image),
	}
}

// Validate は入力を検証する。
func (in AuthorInput) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.Name))
	switch {
	case n == 0:
		return NewValidationError("Name is required")
	case n < authorNameMin:
		return NewValidationError("Name must be at least 2 characters")
	case n > authorNameMax:
		return NewValidationError("Name must be at most 100 characters")
	}
	if img := strings.TrimSpace(in.Image); img != "" && !isHTTPURL(img) {
		return NewValidationError("Image must be a valid URL")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
