// Package models — Friendship domain modeli.
//
// Arkadaşlık sistemi tek tablo üzerinden çalışır:
// - "pending": İstek gönderildi, henüz kabul edilmedi
// - "accepted": Arkadaşlık aktif
// - "blocked": requester_id, addressee_id'yi engelledi
//
// requester_id her zaman isteği gönderen / engeli koyan taraftır.
// Sırasız çift invariant'ı: {A,B} çifti için aynı anda EN FAZLA bir satır
// bulunabilir — (A→B) ve (B→A) aynı ilişkidir. Bunu storage katmanında
// pair_key üzerindeki UNIQUE index garanti eder.
package models

import (
	"fmt"
	"strings"
	"time"
)

// FriendshipStatus, arkadaşlık kaydının DB'deki durumunu temsil eder.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusBlocked  FriendshipStatus = "blocked"
)

// RelationStatus, arkadaşlık durumunun BAKAN KULLANICIYA göre görünümüdür.
//
// DB'deki ham yönelim (kim requester, kim addressee) asla dışarı sızmaz —
// API her zaman viewer'a göre hesaplanmış durumu döner:
// aynı pending kayıt, istek gönderene "pending_sent",
// isteği alana "pending_received" olarak görünür.
type RelationStatus string

const (
	RelationNone            RelationStatus = "none"
	RelationPendingSent     RelationStatus = "pending_sent"
	RelationPendingReceived RelationStatus = "pending_received"
	RelationFriends         RelationStatus = "friends"
	RelationBlocked         RelationStatus = "blocked"
)

// Friendship, bir arkadaşlık kaydını temsil eder.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	PairKey     string           `json:"-"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PairKey, iki kullanıcı ID'sinden kanonik sırasız çift anahtarı üretir.
// PairKey(a, b) == PairKey(b, a) — UNIQUE index bu değer üzerindedir.
func PairKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

// RelationTo, kaydın viewer'a göre RelationStatus karşılığını döner.
//
// Blocked kayıtta engeli KOYAN taraf "blocked" görür; engellenen taraf
// ilişkinin varlığını öğrenmemeli — ona "none" döner (ifşa koruması).
func (f *Friendship) RelationTo(viewerID string) RelationStatus {
	switch f.Status {
	case FriendshipStatusAccepted:
		return RelationFriends
	case FriendshipStatusPending:
		if f.RequesterID == viewerID {
			return RelationPendingSent
		}
		return RelationPendingReceived
	case FriendshipStatusBlocked:
		if f.RequesterID == viewerID {
			return RelationBlocked
		}
		return RelationNone
	}
	return RelationNone
}

// OtherUserID, kayıttaki karşı tarafın ID'sini döner.
func (f *Friendship) OtherUserID(viewerID string) string {
	if f.RequesterID == viewerID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// FriendshipWithUser, arkadaşlık kaydını KARŞI TARAFIN kullanıcı bilgisiyle döner.
// Arkadaş listesi ve istek listelerinde kullanılır — "diğer kullanıcı" ayrımını
// (requester miyim, addressee miyim) repository'deki JOIN sorguları yapar.
type FriendshipWithUser struct {
	ID          string           `json:"id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UserID      string           `json:"user_id"`
	Username    string           `json:"username"`
	DisplayName *string          `json:"display_name"`
	AvatarURL   *string          `json:"avatar_url"`
}

// SendFriendRequestRequest, arkadaşlık isteği gönderme payload'ı.
// Username ile arama yapılır — ID frontend'de bilinmeyebilir.
type SendFriendRequestRequest struct {
	Username string `json:"username"`
}

// Validate, SendFriendRequestRequest kontrolü.
func (r *SendFriendRequestRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}
