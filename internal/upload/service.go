// Package upload は画像アップロードとフォーム上の画像状態を扱う。
package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/blogconsole/internal/apiclient"
	"github.com/hitoshi/blogconsole/internal/model"
)

const (
	// BlogImagePath はブログ記事画像のアップロード先。
	BlogImagePath = "/admin/upload/blog-image"
	// AuthorImagePath は著者画像のアップロード先。
	AuthorImagePath = "/admin/upload/author-image"

	// formField はmultipartのファイルフィールド名。
	formField = "image"
)

// uploadResponse はアップロードAPIのdata部。
type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// Service は画像をアップロードし、公開URLを返す。
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

// UploadBlogImage はブログ記事用の画像をアップロードする。
func (s *Service) UploadBlogImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	return s.upload(ctx, BlogImagePath, filename, content)
}

// UploadAuthorImage は著者用の画像をアップロードする。
func (s *Service) UploadAuthorImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	return s.upload(ctx, AuthorImagePath, filename, content)
}

// upload はmultipart/form-dataで画像を送信する。
// 2xxでもimageUrlが空の場合はErrorKindUploadのエラーを返す。
func (s *Service) upload(ctx context.Context, path, filename string, content io.Reader) (string, error) {
	resp, err := s.client.Send(ctx, http.MethodPost, path, nil, &apiclient.RequestOptions{
		File: &apiclient.File{
			Field:    formField,
			Filename: filename,
			Content:  content,
		},
	})
	if err != nil {
		return "", err
	}

	var data uploadResponse
	if err := apiclient.DecodeData(resp, &data); err != nil {
		s.logger.Warn("failed to decode upload response",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return "", model.NewUploadError(path, resp.StatusCode)
	}

	imageURL := strings.TrimSpace(data.ImageURL)
	if imageURL == "" {
		s.logger.Warn("upload response has no image URL",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return "", model.NewUploadError(path, resp.StatusCode)
	}

	s.logger.Info("image uploaded",
		slog.String("path", path),
		slog.String("filename", filename),
		slog.String("image_url", imageURL),
	)
	return imageURL, nil
}
