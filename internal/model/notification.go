package model

import "time"

// NotificationKind は通知の種別。
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification はユーザー向けの一時的な通知。永続化しない。
type Notification struct {
	ID          uint64           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
