// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı bildirim dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı arkadaşlık isteği gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToUser metodunu çağırır (fire-and-forget)
// 3. Hub, event'i hedef kullanıcının tüm bağlantılarına iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "friend_request_create", "heartbeat" vb.
// Data: Event'e özgü payload.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//
//	Frontend eksik event tespit etmek için seq'i takip eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk gönderilen
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt — "seni duydum"

	// Arkadaşlık operasyonları
	OpFriendRequestCreate = "friend_request_create" // Yeni arkadaşlık isteği geldi
	OpFriendRequestAccept = "friend_request_accept" // Arkadaşlık isteği kabul edildi
	OpFriendRemove        = "friend_remove"         // Arkadaşlıktan çıkarıldı

	// Oturum operasyonları
	OpSessionRevoked = "session_revoked" // Oturum sunucu tarafından kapatıldı
	OpProfileUpdate  = "profile_update"  // Bir arkadaşın profili güncellendi
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
type ReadyData struct {
	UserID        string   `json:"user_id"`
	OnlineUserIDs []string `json:"online_user_ids"`
}

// FriendEventData, arkadaşlık event'lerinin ortak payload'ı.
// Aktör, event'i tetikleyen kullanıcıdır (isteği gönderen / kabul eden / silen).
type FriendEventData struct {
	ActorID       string  `json:"actor_id"`
	ActorUsername string  `json:"actor_username"`
	ActorAvatar   *string `json:"actor_avatar_url,omitempty"`
}

// ProfileUpdateData, profile_update event'inin payload'ı.
type ProfileUpdateData struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
