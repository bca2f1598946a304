package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Blog はブログ記事を表す。
// Authorはクエリによって展開済みオブジェクトまたはIDのみで返される。
type Blog struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"` // リッチテキスト（HTML）
	MainImage  string    `json:"mainImage"`
	CoverImage string    `json:"coverImage"`
	Author     AuthorRef `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BlogInput はブログ記事の作成・更新リクエストボディ。
// Authorには著者IDを指定する。
type BlogInput struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	MainImage  string `json:"mainImage,omitempty"`
	CoverImage string `json:"coverImage,omitempty"`
	Author     string `json:"author"`
}

// Normalize は前後の空白を除去し、Slugが空の場合はタイトルから生成する。
func (in BlogInput) Normalize() BlogInput {
	out := BlogInput{
		Title:      strings.TrimSpace(in.Title),
		Slug:       strings.TrimSpace(in.Slug),
		Content:    in.Content,
		MainImage:  strings.TrimSpace(in.MainImage),
		CoverImage: strings.TrimSpace(in.CoverImage),
		Author:     strings.TrimSpace(in.Author),
	}
	if out.Slug == "" {
		out.Slug = Slugify(out.Title)
	}
	return out
}

// Validate は入力を検証する。
func (in BlogInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return NewValidationError("Content is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewValidationError("Author is required")
	}
	for _, img := range []string{in.MainImage, in.CoverImage} {
		if img = strings.TrimSpace(img); img != "" && !isHTTPURL(img) {
			return NewValidationError("Image must be a valid URL")
		}
	}
	return nil
}

// Slugify はタイトルからURL用のスラッグを生成する。
// 英数字以外の連続はハイフン1つにまとめる。
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// AuthorRef はブログ記事の著者参照。
// 展開済みの著者オブジェクトかIDのみのどちらか一方を保持し、
// JSONデコード時に一度だけ判別する。
type AuthorRef struct {
	id     string
	author *Author
}

// AuthorRefFromID はIDのみの著者参照を生成する。
func AuthorRefFromID(id string) AuthorRef {
	return AuthorRef{id: id}
}

// AuthorRefFromAuthor は展開済みの著者参照を生成する。
func AuthorRefFromAuthor(a Author) AuthorRef {
	return AuthorRef{id: a.ID, author: &a}
}

// ID は著者IDを返す。どちらの形でも常に取得できる。
func (r AuthorRef) ID() string {
	return r.id
}

// Expanded は展開済みの著者オブジェクトを返す。
func (r AuthorRef) Expanded() (*Author, bool) {
	return r.author, r.author != nil
}

// UnknownAuthorName は著者が展開されていない場合の表示名。
const UnknownAuthorName = "Unknown"

// DisplayName は一覧表示用の著者名を返す。IDのみの場合はUnknownAuthorName。
func (r AuthorRef) DisplayName() string {
	if r.author != nil && r.author.Name != "" {
		return r.author.Name
	}
	return UnknownAuthorName
}

// UnmarshalJSON は文字列IDとオブジェクトの両方を受け付ける。
func (r *AuthorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = AuthorRef{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("failed to decode author id: %w", err)
		}
		*r = AuthorRefFromID(id)
		return nil
	case data[0] == '{':
		var a Author
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("failed to decode author object: %w", err)
		}
		*r = AuthorRefFromAuthor(a)
		return nil
	default:
		return fmt.Errorf("unsupported author reference: %s", string(data))
	}
}

// MarshalJSON は受け取った形のままエンコードする。
func (r AuthorRef) MarshalJSON() ([]byte, error) {
	if r.author != nil {
		return json.Marshal(r.author)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}
