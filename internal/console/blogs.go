package console

import (
	"context"
	"log/slog"

	"github.com/hitoshi/blogconsole/internal/blog"
	"github.com/hitoshi/blogconsole/internal/model"
	"github.com/hitoshi/blogconsole/internal/resource"
)

// BlogRow はブログ一覧の1行分の表示内容。
type BlogRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	AuthorName  string `json:"authorName"`
	AuthorImage string `json:"authorImage,omitempty"`
	MainImage   string `json:"mainImage,omitempty"`
}

// BlogsView はブログ一覧画面の表示状態。
type BlogsView struct {
	Rows       []BlogRow        `json:"rows"`
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
	Pagination model.Pagination `json:"pagination"`
	Search     string           `json:"search"`
}

// BlogsScreen はブログ記事一覧を扱う画面。
type BlogsScreen struct {
	controller *resource.Controller[model.Blog, model.BlogInput]
	notifier   Notifier
	logger     *slog.Logger
}

func newBlogsScreen(controller *resource.Controller[model.Blog, model.BlogInput], notifier Notifier, logger *slog.Logger) *BlogsScreen {
	return &BlogsScreen{
		controller: controller,
		notifier:   notifier,
		logger:     logger.With(slog.String("screen", "blogs")),
	}
}

// Render は画面表示時に呼ぶ。初回のみ一覧を取得する。
func (s *BlogsScreen) Render(ctx context.Context) {
	s.controller.Mount(ctx)
}

// State はコントローラーの状態をそのまま返す。
func (s *BlogsScreen) State() model.ListState[model.Blog] {
	return s.controller.State()
}

// View は一覧表示用に整形した状態を返す。
func (s *BlogsScreen) View() BlogsView {
	state := s.controller.State()
	rows := make([]BlogRow, 0, len(state.Items))
	for _, b := range state.Items {
		rows = append(rows, Row(b))
	}
	return BlogsView{
		Rows:       rows,
		Loading:    state.Loading,
		Error:      state.Error,
		Pagination: state.Pagination,
		Search:     s.controller.Search(),
	}
}

// Delete はブログ記事を削除する。
func (s *BlogsScreen) Delete(ctx context.Context, id string) error {
	if err := s.controller.Delete(ctx, id); err != nil {
		s.notifier.Error(TitleError, model.MessageOf(err, "Failed to delete blog"))
		return err
	}
	s.notifier.Success(TitleSuccess, "Blog deleted successfully")
	return nil
}

// ChangePage は現在の検索語のまま指定ページを取得する。
func (s *BlogsScreen) ChangePage(ctx context.Context, page int) {
	s.controller.Fetch(ctx, page, s.controller.Search())
}

// SearchFor は検索語を変更し、1ページ目から取得し直す。
func (s *BlogsScreen) SearchFor(ctx context.Context, query string) {
	s.controller.Fetch(ctx, 1, query)
}

// Row はブログ記事を一覧の1行に整形する。
func Row(b model.Blog) BlogRow {
	row := BlogRow{
		ID:         b.ID,
		Title:      blog.ShortTitle(b),
		Excerpt:    blog.Excerpt(b),
		AuthorName: b.Author.DisplayName(),
		MainImage:  b.MainImage,
	}
	if a, ok := b.Author.Expanded(); ok {
		row.AuthorImage = a.Image
	}
	return row
}
