package models

import "time"

// NotificationKind, bildirim türü.
type NotificationKind string

const (
	NotificationFriendRequest NotificationKind = "friend_request"
	NotificationFriendAccept  NotificationKind = "friend_accept"
)

// Notification, kullanıcıya gösterilen bir bildirimi temsil eder.
// ActorID, bildirimi tetikleyen kullanıcıdır (isteği gönderen / kabul eden).
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ActorID   string           `json:"actor_id"`
	Kind      NotificationKind `json:"kind"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationWithActor, bildirimi tetikleyen kullanıcının özetiyle birlikte döner.
type NotificationWithActor struct {
	ID            string           `json:"id"`
	Kind          NotificationKind `json:"kind"`
	ReadAt        *time.Time       `json:"read_at"`
	CreatedAt     time.Time        `json:"created_at"`
	ActorID       string           `json:"actor_id"`
	ActorUsername string           `json:"actor_username"`
	ActorAvatar   *string          `json:"actor_avatar_url"`
}
