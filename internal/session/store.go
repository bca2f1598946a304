// Package session は管理APIへのリクエストに付与する認証情報を保持する。
package session

import (
	"sync"

	"github.com/hitoshi/blogconsole/internal/model"
)

// Store はプロセス内で唯一有効なCredentialを保持する。
// ログインでSet、ログアウトでClear、401受信でExpireされる。
//
// 世代番号はSet/Clear/Expireのたびに進む。リクエスト送信時に世代を控えておき、
// 401を受けたらその世代でExpireを呼ぶことで、同時に複数の401が返っても
// 実際に破棄を行うのは最初の1件だけになる。
type Store struct {
	mu         sync.RWMutex
	credential model.Credential
	generation uint64
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{}
}

// Set はログイン成功時に認証情報を設定する。
func (s *Store) Set(c model.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = c
	s.generation++
}

// Clear はログアウト時に認証情報を破棄する。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = model.Credential{}
	s.generation++
}

// Current は現在の認証情報と世代番号を返す。
// 認証情報が未設定の場合、okはfalseになる。
func (s *Store) Current() (c model.Credential, generation uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.generation, !s.credential.IsZero()
}

// Token は現在のBearerトークンを返す。未設定の場合は空文字列。
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential.Token
}

// Authenticated は認証情報が設定されているかを返す。
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Expire は指定世代が現在の世代と一致する場合のみ認証情報を破棄し、trueを返す。
// 既に別の呼び出しで破棄済み、または再ログイン済みの場合はfalseを返す。
func (s *Store) Expire(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.credential = model.Credential{}
	s.generation++
	return true
}
