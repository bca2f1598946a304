package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/blogconsole/internal/author"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/resource"
	"github.com/hitoshi/blogconsole/internal/upload"
)

// AuthorsView は著者画面の表示状態。
type AuthorsView struct {
	List     model.ListState[model.Author] `json:"list"`
	FormOpen bool                          `json:"formOpen"`
	Editing  *model.Author                 `json:"editing,omitempty"`
	Image    upload.ImageState             `json:"image"`
}

// AuthorsScreen は著者一覧と作成・編集フォームを扱う画面。
type AuthorsScreen struct {
	controller *resource.Controller[model.Author, model.AuthorInput]
	uploads    *upload.Service
	notifier   Notifier
	logger     *slog.Logger

	mu       sync.Mutex
	formOpen bool
	editing  *model.Author
	image    upload.ImageField
}

// NewAuthorsScreen はAuthorsScreenを生成する。
func NewAuthorsScreen(service *author.Service, uploads *upload.Service, notifier Notifier, limit int, logger *slog.Logger) *AuthorsScreen {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorsScreen{
		controller: resource.NewController[model.Author, model.AuthorInput](service, resource.Config{
			Plural:   "authors",
			Singular: "author",
			Limit:    limit,
		}, logger),
		uploads:  uploads,
		notifier: notifier,
		logger:   logger.With(slog.String("screen", "authors")),
	}
}

// Render は画面表示時に呼ぶ。初回のみ一覧を取得する。
func (s *AuthorsScreen) Render(ctx context.Context) {
	s.controller.Mount(ctx)
}

// View は現在の表示状態を返す。
func (s *AuthorsScreen) View() AuthorsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := AuthorsView{
		List:     s.controller.State(),
		FormOpen: s.formOpen,
		Image:    s.image.State(),
	}
	if s.editing != nil {
		a := *s.editing
		v.Editing = &a
	}
	return v
}

// OpenForm はフォームを開く。aがnilなら新規作成、それ以外は編集。
func (s *AuthorsScreen) OpenForm(a *model.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formOpen = true
	s.editing = nil
	existing := ""
	if a != nil {
		copied := *a
		s.editing = &copied
		existing = a.Image
	}
	s.image.Reset(existing)
}

// CloseForm はフォームを閉じ、編集対象と画像の状態を破棄する。
func (s *AuthorsScreen) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formOpen = false
	s.editing = nil
	s.image.Reset("")
}

// ChangeImage は選択された画像をプレビュー表示してからアップロードする。
// 失敗した場合は選択前の画像に戻し、エラー通知を出す。フォームの他の入力は妨げない。
func (s *AuthorsScreen) ChangeImage(ctx context.Context, filename string, data []byte) error {
	return changeImage(ctx, &s.image, s.notifier, s.logger, filename, data, s.uploads.UploadAuthorImage)
}

// Submit はフォームの内容で著者を作成または更新する。
// 成功時は通知を出してフォームを閉じ、失敗時はフォームを開いたままエラー通知を出す。
func (s *AuthorsScreen) Submit(ctx context.Context, name string) error {
	s.mu.Lock()
	editing := s.editing
	s.mu.Unlock()

	in := model.AuthorInput{Name: name, Image: s.image.URL()}

	var (
		err     error
		success string
	)
	if editing != nil {
		err = s.controller.Update(ctx, editing.ID, in)
		success = "Author updated successfully"
	} else {
		err = s.controller.Create(ctx, in)
		success = "Author created successfully"
	}
	if err != nil {
		s.notifier.Error(TitleError, model.MessageOf(err, "Failed to save author"))
		return err
	}

	s.notifier.Success(TitleSuccess, success)
	s.CloseForm()
	return nil
}

// Delete は著者を削除する。
func (s *AuthorsScreen) Delete(ctx context.Context, id string) error {
	if err := s.controller.Delete(ctx, id); err != nil {
		s.notifier.Error(TitleError, model.MessageOf(err, "Failed to delete author"))
		return err
	}
	s.notifier.Success(TitleSuccess, "Author deleted successfully")
	return nil
}

// ChangePage は現在の検索語のまま指定ページを取得する。
func (s *AuthorsScreen) ChangePage(ctx context.Context, page int) {
	s.controller.Fetch(ctx, page, s.controller.Search())
}

// SearchFor は検索語を変更し、1ページ目から取得し直す。
func (s *AuthorsScreen) SearchFor(ctx context.Context, query string) {
	s.controller.Fetch(ctx, 1, query)
}
