package upload

import (
	"encoding/base64"
	"net/http"
	"sync"
)

// ImageState はフォーム上の画像の状態。
// URLは送信時に使う確定済みの値、Previewは画面に表示している値。
type ImageState struct {
	URL       string `json:"url"`
	Preview   string `json:"preview"`
	Uploading bool   `json:"uploading"`
}

// ImageField はフォームの画像入力を表す。
// アップロード前にローカルプレビューを表示し、失敗時は最後に確定した画像に戻す。
// 複数のアップロードが重なった場合も、戻し先は常に確定済みの状態になる。
type ImageField struct {
	mu        sync.Mutex
	state     ImageState
	committed ImageState
	pending   int
}

// Reset はフォームを開いたときの状態に戻す。既存画像があればそれを表示する。
func (f *ImageField) Reset(existing string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = ImageState{URL: existing, Preview: existing}
	f.state = f.committed
	f.pending = 0
}

// Stage はローカルプレビューを表示してアップロード中にする。URLは変更しない。
func (f *ImageField) Stage(preview string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending++
	f.state.Preview = preview
	f.state.Uploading = true
}

// Commit はアップロード結果のURLを確定し、プレビューもそのURLにする。
func (f *ImageField) Commit(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = ImageState{URL: url, Preview: url}
	f.settleLocked()
}

// Restore は最後に確定した画像に戻す。
func (f *ImageField) Restore() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleLocked()
}

func (f *ImageField) settleLocked() {
	if f.pending > 0 {
		f.pending--
	}
	f.state = f.committed
	f.state.Uploading = f.pending > 0
}

// State は現在の状態を返す。
func (f *ImageField) State() ImageState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// URL は送信に使う画像URLを返す。
func (f *ImageField) URL() string {
	return f.State().URL
}

// PreviewFromBytes は画像データからプレビュー用のdata URLを生成する。
func PreviewFromBytes(data []byte) string {
	contentType := http.DetectContentType(data)
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
