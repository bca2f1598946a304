package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/blogconsole/internal/blog"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/resource"
	"github.com/hitoshi/blogconsole/internal/upload"
)

// BlogsPath はブログ一覧画面のパス。保存成功後に遷移する。
const BlogsPath = "/blogs"

// BlogFormView はブログ記事フォームの表示状態。
type BlogFormView struct {
	Editing    *model.Blog       `json:"editing,omitempty"`
	MainImage  upload.ImageState `json:"mainImage"`
	CoverImage upload.ImageState `json:"coverImage"`
}

// BlogFormScreen はブログ記事の作成・編集フォーム。
// 保存は一覧と同じコントローラーを通すため、成功後は一覧が再取得される。
type BlogFormScreen struct {
	controller *resource.Controller[model.Blog, model.BlogInput]
	service    *blog.Service
	uploads    *upload.Service
	notifier   Notifier
	navigate   func(path string)
	logger     *slog.Logger

	mu         sync.Mutex
	editing    *model.Blog
	mainImage  upload.ImageField
	coverImage upload.ImageField
}

func newBlogFormScreen(
	controller *resource.Controller[model.Blog, model.BlogInput],
	service *blog.Service,
	uploads *upload.Service,
	notifier Notifier,
	navigate func(path string),
	logger *slog.Logger,
) *BlogFormScreen {
	return &BlogFormScreen{
		controller: controller,
		service:    service,
		uploads:    uploads,
		notifier:   notifier,
		navigate:   navigate,
		logger:     logger.With(slog.String("screen", "blog_form")),
	}
}

// New は新規作成用にフォームを初期化する。
func (s *BlogFormScreen) New() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
	s.mainImage.Reset("")
	s.coverImage.Reset("")
}

// Load は編集対象のブログ記事を取得してフォームを初期化する。
// 取得に失敗した場合はエラー通知を出し、フォームの状態は変更しない。
func (s *BlogFormScreen) Load(ctx context.Context, id string) (*model.Blog, error) {
	b, err := s.service.Get(ctx, id)
	if err != nil {
		s.notifier.Error(TitleError, model.MessageOf(err, "Failed to fetch blog"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = b
	s.mainImage.Reset(b.MainImage)
	s.coverImage.Reset(b.CoverImage)
	copied := *b
	return &copied, nil
}

// View は現在の表示状態を返す。
func (s *BlogFormScreen) View() BlogFormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := BlogFormView{
		MainImage:  s.mainImage.State(),
		CoverImage: s.coverImage.State(),
	}
	if s.editing != nil {
		b := *s.editing
		v.Editing = &b
	}
	return v
}

// ChangeMainImage はメイン画像をアップロードする。
func (s *BlogFormScreen) ChangeMainImage(ctx context.Context, filename string, data []byte) error {
	return changeImage(ctx, &s.mainImage, s.notifier, s.logger, filename, data, s.uploads.UploadBlogImage)
}

// ChangeCoverImage はカバー画像をアップロードする。
func (s *BlogFormScreen) ChangeCoverImage(ctx context.Context, filename string, data []byte) error {
	return changeImage(ctx, &s.coverImage, s.notifier, s.logger, filename, data, s.uploads.UploadBlogImage)
}

// Submit はブログ記事を作成または更新する。
// 画像はフォーム上で確定済みのURLを使う。成功時は一覧画面へ遷移する。
func (s *BlogFormScreen) Submit(ctx context.Context, in model.BlogInput) error {
	s.mu.Lock()
	editing := s.editing
	s.mu.Unlock()

	in.MainImage = s.mainImage.URL()
	in.CoverImage = s.coverImage.URL()

	var (
		err     error
		success string
	)
	if editing != nil {
		err = s.controller.Update(ctx, editing.ID, in)
		success = "Blog updated successfully"
	} else {
		err = s.controller.Create(ctx, in)
		success = "Blog created successfully"
	}
	if err != nil {
		s.notifier.Error(TitleError, model.MessageOf(err, "Failed to save blog"))
		return err
	}

	s.notifier.Success(TitleSuccess, success)
	s.New()
	if s.navigate != nil {
		s.navigate(BlogsPath)
	}
	return nil
}
