package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogconsole/internal/model"
)

// fakeAPI は管理APIのインメモリ実装。
type fakeAPI struct {
	mu      sync.Mutex
	authors []model.Author
	blogs   []map[string]any
	nextID  int

	// 次の変更系リクエストに返すステータス（0なら通常処理）
	failMutation int
	failMessage  string
	// 画像アップロードの挙動
	uploadStatus int
	uploadURL    string
	// trueなら全リクエストに401を返す
	unauthorized bool

	requests     int32
	mutationHits int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{uploadStatus: http.StatusOK, uploadURL: "https://cdn.example.com/uploaded.png"}
}

// set はテストからの設定変更をロック下で行う。
func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) seedAuthors(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.nextID++
		f.authors = append(f.authors, model.Author{ID: fmt.Sprintf("a%d", f.nextID), Name: fmt.Sprintf("Author %d", f.nextID)})
	}
}

func (f *fakeAPI) server() *httptest.Server {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			atomic.AddInt32(&f.requests, 1)
			f.mu.Lock()
			unauthorized := f.unauthorized
			f.mu.Unlock()
			if unauthorized {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
				return
			}
			if req.Method != http.MethodGet {
				atomic.AddInt32(&f.mutationHits, 1)
				f.mu.Lock()
				status, msg := f.failMutation, f.failMessage
				f.mu.Unlock()
				if status != 0 && !strings.HasPrefix(req.URL.Path, "/admin/upload/") {
					writeJSON(w, status, map[string]any{"success": false, "message": msg})
					return
				}
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/admin/authors", f.listAuthors)
	r.Post("/admin/authors", f.createAuthor)
	r.Put("/admin/authors/{id}", f.updateAuthor)
	r.Delete("/admin/authors/{id}", f.deleteAuthor)
	r.Get("/admin/blogs", f.listBlogs)
	r.Get("/admin/blogs/{id}", f.getBlog)
	r.Post("/admin/blogs", f.createBlog)
	r.Put("/admin/blogs/{id}", f.updateBlog)
	r.Delete("/admin/blogs/{id}", f.deleteBlog)
	r.Post("/admin/upload/author-image", f.upload)
	r.Post("/admin/upload/blog-image", f.upload)

	return httptest.NewServer(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pageParams(r *http.Request) (int, int, string) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit, r.URL.Query().Get("search")
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (f *fakeAPI) listAuthors(w http.ResponseWriter, r *http.Request) {
	page, limit, search := pageParams(r)
	f.mu.Lock()
	var matched []model.Author
	for _, a := range f.authors {
		if search == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(search)) {
			matched = append(matched, a)
		}
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"authors":    paginate(matched, page, limit),
			"pagination": model.NewPagination(len(matched), page, limit),
		},
	})
}

func (f *fakeAPI) createAuthor(w http.ResponseWriter, r *http.Request) {
	var in model.AuthorInput
	json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	f.nextID++
	a := model.Author{ID: fmt.Sprintf("a%d", f.nextID), Name: in.Name, Image: in.Image}
	f.authors = append(f.authors, a)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"author": a}})
}

func (f *fakeAPI) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.AuthorInput
	json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.authors {
		if f.authors[i].ID == id {
			f.authors[i].Name = in.Name
			f.authors[i].Image = in.Image
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"author": f.authors[i]}})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Author not found"})
}

func (f *fakeAPI) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.authors {
		if f.authors[i].ID == id {
			f.authors = append(f.authors[:i], f.authors[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Author not found"})
}

func (f *fakeAPI) findAuthorLocked(id string) (model.Author, bool) {
	for _, a := range f.authors {
		if a.ID == id {
			return a, true
		}
	}
	return model.Author{}, false
}

func (f *fakeAPI) listBlogs(w http.ResponseWriter, r *http.Request) {
	page, limit, _ := pageParams(r)
	f.mu.Lock()
	blogs := append([]map[string]any(nil), f.blogs...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"blogs":      paginate(blogs, page, limit),
			"pagination": model.NewPagination(len(blogs), page, limit),
		},
	})
}

func (f *fakeAPI) getBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blogs {
		if b["_id"] == id {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"blog": b}})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Blog not found"})
}

func (f *fakeAPI) blogFromInput(id string, in model.BlogInput) map[string]any {
	b := map[string]any{
		"_id":        id,
		"title":      in.Title,
		"slug":       in.Slug,
		"content":    in.Content,
		"mainImage":  in.MainImage,
		"coverImage": in.CoverImage,
		"author":     in.Author,
	}
	if a, ok := f.findAuthorLocked(in.Author); ok {
		b["author"] = a
	}
	return b
}

func (f *fakeAPI) createBlog(w http.ResponseWriter, r *http.Request) {
	var in model.BlogInput
	json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	f.nextID++
	b := f.blogFromInput(fmt.Sprintf("b%d", f.nextID), in)
	f.blogs = append(f.blogs, b)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"blog": b}})
}

func (f *fakeAPI) updateBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.BlogInput
	json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.blogs {
		if f.blogs[i]["_id"] == id {
			f.blogs[i] = f.blogFromInput(id, in)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"blog": f.blogs[i]}})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Blog not found"})
}

func (f *fakeAPI) deleteBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.blogs {
		if f.blogs[i]["_id"] == id {
			f.blogs = append(f.blogs[:i], f.blogs[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Blog not found"})
}

func (f *fakeAPI) upload(w http.ResponseWriter, r *http.Request) {
	if _, _, err := r.FormFile("image"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No image provided"})
		return
	}
	f.mu.Lock()
	status, url := f.uploadStatus, f.uploadURL
	f.mu.Unlock()
	if status >= 300 {
		writeJSON(w, status, map[string]any{"success": false, "message": "Upload storage unavailable"})
		return
	}
	writeJSON(w, status, map[string]any{"success": true, "data": map[string]any{"imageUrl": url}})
}
