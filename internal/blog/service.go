// Package blog は管理APIのブログ記事リソースへのアクセスを提供する。
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/security"
)

const (
	basePath = "/admin/blogs"

	// TitleExcerptLength は一覧表示でのタイトルの最大文字数。
	TitleExcerptLength = 60
	// ContentExcerptLength は一覧表示での本文抜粋の最大文字数。
	ContentExcerptLength = 80
)

type listResponse struct {
	Blogs      []model.Blog      `json:"blogs"`
	Pagination *model.Pagination `json:"pagination"`
}

type singleResponse struct {
	Blog *model.Blog `json:"blog"`
}

// Service はブログ記事リソースのCRUD操作を提供する。
// 作成・更新時は本文HTMLをサニタイズしてから送信する。
type Service struct {
	client    *apiclient.Client
	sanitizer security.ContentSanitizer
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// sanitizerがnilの場合はデフォルトのポリシーを使用する。
func NewService(client *apiclient.Client, sanitizer security.ContentSanitizer, logger *slog.Logger) *Service {
	if sanitizer == nil {
		sanitizer = security.NewContentSanitizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:    client,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// List はブログ記事一覧を取得する。著者は展開済み・IDのみのどちらでも受け付ける。
func (s *Service) List(ctx context.Context, params model.ListParams) (*model.Page[model.Blog], error) {
	var resp listResponse
	if err := s.client.Get(ctx, basePath, params.Values(), &resp); err != nil {
		return nil, err
	}
	return &model.Page[model.Blog]{
		Items:      resp.Blogs,
		Pagination: resp.Pagination,
	}, nil
}

// Get は指定IDのブログ記事を取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Blog, error) {
	if id == "" {
		return nil, model.NewValidationError("Blog ID is required")
	}
	var resp singleResponse
	if err := s.client.Get(ctx, itemPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return unwrap(resp, itemPath(id))
}

// Create はブログ記事を作成する。
func (s *Service) Create(ctx context.Context, in model.BlogInput) (*model.Blog, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	var resp singleResponse
	if err := s.client.Post(ctx, basePath, in, &resp); err != nil {
		return nil, err
	}
	b, err := unwrap(resp, basePath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("blog created", slog.String("blog_id", b.ID), slog.String("slug", b.Slug))
	return b, nil
}

// Update はブログ記事を更新する。
func (s *Service) Update(ctx context.Context, id string, in model.BlogInput) (*model.Blog, error) {
	if id == "" {
		return nil, model.NewValidationError("Blog ID is required")
	}
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	var resp singleResponse
	if err := s.client.Put(ctx, itemPath(id), in, &resp); err != nil {
		return nil, err
	}
	b, err := unwrap(resp, itemPath(id))
	if err != nil {
		return nil, err
	}
	s.logger.Info("blog updated", slog.String("blog_id", b.ID))
	return b, nil
}

// Delete はブログ記事を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.NewValidationError("Blog ID is required")
	}
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return err
	}
	s.logger.Info("blog deleted", slog.String("blog_id", id))
	return nil
}

// prepare は入力を正規化・サニタイズして検証する。
// サニタイズ後に本文が空になった場合も検証エラーとする。
func (s *Service) prepare(in model.BlogInput) (model.BlogInput, error) {
	in = in.Normalize()
	in.Content = s.sanitizer.Sanitize(in.Content)
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// Excerpt は一覧表示用の本文抜粋を返す。
func Excerpt(b model.Blog) string {
	return security.Excerpt(b.Content, ContentExcerptLength)
}

// ShortTitle は一覧表示用のタイトルを返す。
func ShortTitle(b model.Blog) string {
	return security.Truncate(b.Title, TitleExcerptLength)
}

func itemPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}

func unwrap(resp singleResponse, path string) (*model.Blog, error) {
	if resp.Blog == nil {
		return nil, fmt.Errorf("response for %s did not contain a blog", path)
	}
	return resp.Blog, nil
}
