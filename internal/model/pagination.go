package model

import (
	"net/url"
	"strconv"
)

// DefaultPageLimit は一覧取得の1ページあたりのデフォルト件数。
const DefaultPageLimit = 10

// Pagination は一覧レスポンスのページング情報。
// Pagesは Total > 0 のとき ceil(Total/Limit)、それ以外は0。
// Pageはユーザー要求値のため一時的にPagesを超えることがある。
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination は不変条件を満たすPaginationを生成する。
// pageが1未満の場合は1、limitが1未満の場合はDefaultPageLimitを使用する。
func NewPagination(total, page, limit int) Pagination {
	if total < 0 {
		total = 0
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: PageCount(total, limit),
	}
}

// PageCount は総件数と1ページあたり件数からページ数を計算する。
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Normalize はサーバーから受け取ったページング情報のPagesを再計算する。
func (p Pagination) Normalize() Pagination {
	return NewPagination(p.Total, p.Page, p.Limit)
}

// ListParams は一覧取得のクエリパラメータ。
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Values はクエリ文字列に変換する。0以下の値と空の検索語は送信しない。
func (p ListParams) Values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// Page は一覧APIの1ページ分のデコード結果。
// サーバーがpaginationを省略した場合はPaginationがnilになる。
type Page[T any] struct {
	Items      []T
	Pagination *Pagination
}

// ListState はリソースコントローラーの状態スナップショット。
// Itemsは最後に成功した取得結果を常に丸ごと表す。
type ListState[T any] struct {
	Items      []T        `json:"items"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	Pagination Pagination `json:"pagination"`
}
