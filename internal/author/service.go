// Package author は管理APIの著者リソースへのアクセスを提供する。
package author

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/model"
)

// basePath は著者リソースのエンドポイント。
const basePath = "/admin/authors"

// listResponse は一覧APIのレスポンス。
type listResponse struct {
	Authors    []model.Author    `json:"authors"`
	Pagination *model.Pagination `json:"pagination"`
}

// singleResponse は単一著者APIのレスポンス。
type singleResponse struct {
	Author *model.Author `json:"author"`
}

// Service は著者リソースのCRUD操作を提供する。
// resource.Service[model.Author, model.AuthorInput] を満たす。
type Service struct {
	client *apiclient.Client
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// List は著者一覧を取得する。
func (s *Service) List(ctx context.Context, params model.ListParams) (*model.Page[model.Author], error) {
	var resp listResponse
	if err := s.client.Get(ctx, basePath, params.Values(), &resp); err != nil {
		return nil, err
	}
	return &model.Page[model.Author]{
		Items:      resp.Authors,
		Pagination: resp.Pagination,
	}, nil
}

// Get は指定IDの著者を取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Author, error) {
	if id == "" {
		return nil, model.NewValidationError("Author ID is required")
	}
	var resp singleResponse
	if err := s.client.Get(ctx, itemPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return unwrap(resp, itemPath(id))
}

// Create は著者を作成する。入力検証に失敗した場合はリクエストを送信しない。
func (s *Service) Create(ctx context.Context, in model.AuthorInput) (*model.Author, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var resp singleResponse
	if err := s.client.Post(ctx, basePath, in, &resp); err != nil {
		return nil, err
	}
	a, err := unwrap(resp, basePath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("author created", slog.String("author_id", a.ID))
	return a, nil
}

// Update は著者を更新する。入力検証に失敗した場合はリクエストを送信しない。
func (s *Service) Update(ctx context.Context, id string, in model.AuthorInput) (*model.Author, error) {
	if id == "" {
		return nil, model.NewValidationError("Author ID is required")
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var resp singleResponse
	if err := s.client.Put(ctx, itemPath(id), in, &resp); err != nil {
		return nil, err
	}
	a, err := unwrap(resp, itemPath(id))
	if err != nil {
		return nil, err
	}
	s.logger.Info("author updated", slog.String("author_id", a.ID))
	return a, nil
}

// Delete は著者を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.NewValidationError("Author ID is required")
	}
	if err := s.client.Delete(ctx, itemPath(id)); err != nil {
		return err
	}
	s.logger.Info("author deleted", slog.String("author_id", id))
	return nil
}

func itemPath(id string) string {
	return basePath + "/" + url.PathEscape(id)
}

// unwrap は {author} 形式のレスポンスから著者を取り出す。
func unwrap(resp singleResponse, path string) (*model.Author, error) {
	if resp.Author == nil {
		return nil, fmt.Errorf("response for %s did not contain an author", path)
	}
	return resp.Author, nil
}
