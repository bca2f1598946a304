package notify

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/blogconsole/internal/model"
)

func newTestQueue(successTTL, errorTTL time.Duration) *Queue {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewQueue(Config{SuccessTTL: successTTL, ErrorTTL: errorTTL}, logger, nil)
}

// waitFor は条件が満たされるまで最大timeoutだけポーリングする。
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewQueue_DefaultTTL(t *testing.T) {
	q := NewQueue(Config{}, nil, nil)
	if q.config.SuccessTTL != 3*time.Second {
		t.Errorf("SuccessTTL = %v, want 3s", q.config.SuccessTTL)
	}
	if q.config.ErrorTTL != 5*time.Second {
		t.Errorf("ErrorTTL = %v, want 5s", q.config.ErrorTTL)
	}
}

func TestPush_InsertionOrderAndUniqueIDs(t *testing.T) {
	q := newTestQueue(time.Minute, time.Minute)
	defer q.Reset()

	id1 := q.Success("Success", "Author created successfully")
	id2 := q.Error("Error", "Failed to save author")
	id3 := q.Success("Upload Successful", "")

	if id1 == id2 || id2 == id3 || id1 == id3 {
		t.Fatalf("IDが重複している: %d, %d, %d", id1, id2, id3)
	}
	if !(id1 < id2 && id2 < id3) {
		t.Errorf("IDは単調増加であるべき: %d, %d, %d", id1, id2, id3)
	}

	list := q.List()
	if len(list) != 3 {
		t.Fatalf("通知数 = %d, want 3", len(list))
	}
	if list[0].ID != id1 || list[1].ID != id2 || list[2].ID != id3 {
		t.Errorf("挿入順が保持されていない: %+v", list)
	}
	if list[1].Kind != model.NotificationError || list[1].Description != "Failed to save author" {
		t.Errorf("2件目 = %+v", list[1])
	}
}

func TestPush_ExpiresAfterKindTTL(t *testing.T) {
	q := newTestQueue(30*time.Millisecond, 200*time.Millisecond)
	defer q.Reset()

	q.Success("ok", "")
	errID := q.Error("ng", "")

	if !waitFor(t, time.Second, func() bool { return q.Len() == 1 }) {
		t.Fatalf("成功通知が期限後に削除されていない: %+v", q.List())
	}
	// 成功通知の削除時点ではエラー通知はまだ残っている
	if list := q.List(); len(list) != 1 || list[0].ID != errID {
		t.Errorf("残っている通知 = %+v, want error only", list)
	}

	if !waitFor(t, 2*time.Second, func() bool { return q.Len() == 0 }) {
		t.Errorf("エラー通知が期限後に削除されていない: %+v", q.List())
	}
}

func TestDismiss_RemovesEarlyAndIsIdempotent(t *testing.T) {
	q := newTestQueue(50*time.Millisecond, 50*time.Millisecond)
	defer q.Reset()

	id := q.Success("ok", "")
	other := q.Success("other", "")

	q.Dismiss(id)
	if list := q.List(); len(list) != 1 || list[0].ID != other {
		t.Fatalf("Dismiss後の通知 = %+v", list)
	}

	// 2回目や存在しないIDは何もしない
	q.Dismiss(id)
	q.Dismiss(9999)

	// 取り消されたタイマーが後から他の通知を消すことはない
	if !waitFor(t, time.Second, func() bool { return q.Len() == 0 }) {
		t.Errorf("残りの通知が期限後に削除されていない: %+v", q.List())
	}
}

func TestDismiss_DoesNotAffectOtherTimers(t *testing.T) {
	q := newTestQueue(300*time.Millisecond, time.Minute)
	defer q.Reset()

	first := q.Success("first", "")
	q.Success("second", "")
	q.Dismiss(first)

	// 2件目の自動削除タイミングは変わらない（すぐには消えない）
	time.Sleep(50 * time.Millisecond)
	if q.Len() != 1 {
		t.Errorf("他の通知が早期に削除された: %+v", q.List())
	}
	if !waitFor(t, 2*time.Second, func() bool { return q.Len() == 0 }) {
		t.Errorf("2件目が期限後に削除されていない")
	}
}

func TestReset_ClearsAll(t *testing.T) {
	q := newTestQueue(20*time.Millisecond, 20*time.Millisecond)
	q.Success("a", "")
	q.Error("b", "")

	q.Reset()
	if q.Len() != 0 {
		t.Errorf("Reset後の通知数 = %d, want 0", q.Len())
	}

	// 停止済みタイマーが発火しても問題ない
	time.Sleep(50 * time.Millisecond)
	if q.Len() != 0 {
		t.Errorf("Reset後に通知が復活した: %+v", q.List())
	}
}
