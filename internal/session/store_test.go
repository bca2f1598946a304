package session

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hitoshi/blogconsole/internal/model"
)

func TestStore_SetAndClear(t *testing.T) {
	s := NewStore()
	if s.Authenticated() {
		t.Fatal("新規Storeは未認証であるべき")
	}

	s.Set(model.Credential{Token: "tok", RefreshToken: "ref"})
	c, _, ok := s.Current()
	if !ok {
		t.Fatal("Set後は認証済みであるべき")
	}
	if c.Token != "tok" || c.RefreshToken != "ref" {
		t.Errorf("Credential = %+v, want tok/ref", c)
	}

	s.Clear()
	if s.Authenticated() {
		t.Error("Clear後は未認証であるべき")
	}
	if s.Token() != "" {
		t.Errorf("Token() = %q, want empty", s.Token())
	}
}

func TestStore_Expire_OnlyMatchingGeneration(t *testing.T) {
	s := NewStore()
	s.Set(model.Credential{Token: "tok"})
	_, gen, _ := s.Current()

	if !s.Expire(gen) {
		t.Fatal("現在の世代でのExpireはtrueを返すべき")
	}
	if s.Authenticated() {
		t.Error("Expire後は未認証であるべき")
	}
	if s.Expire(gen) {
		t.Error("同じ世代での2回目のExpireはfalseを返すべき")
	}
}

func TestStore_Expire_DoesNotClearNewLogin(t *testing.T) {
	s := NewStore()
	s.Set(model.Credential{Token: "old"})
	_, oldGen, _ := s.Current()

	// 古いリクエストの401が届く前に再ログインした
	s.Set(model.Credential{Token: "new"})

	if s.Expire(oldGen) {
		t.Error("古い世代でのExpireは新しい認証情報を破棄してはならない")
	}
	if s.Token() != "new" {
		t.Errorf("Token() = %q, want %q", s.Token(), "new")
	}
}

func TestStore_Expire_ConcurrentCallsExpireOnce(t *testing.T) {
	s := NewStore()
	s.Set(model.Credential{Token: "tok"})
	_, gen, _ := s.Current()

	var expired int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Expire(gen) {
				atomic.AddInt32(&expired, 1)
			}
		}()
	}
	wg.Wait()

	if expired != 1 {
		t.Errorf("Expireが成功した回数 = %d, want 1", expired)
	}
}
