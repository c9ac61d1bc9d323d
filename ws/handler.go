package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ekinaktas/klik/models"
)

// SessionResolver, WebSocket handler'ın oturum doğrulaması için kullandığı interface.
//
// Neden services.SessionService yerine kendi interface'imizi tanımlıyoruz?
// Circular dependency'yi önlemek için:
// - services paketi ws.EventPublisher'ı kullanıyor (bildirim push için)
// - ws paketi services.SessionService'i kullansaydı → ws → services → ws döngüsü oluşurdu
//
// Interface Segregation: WS handler'ın session service'in tüm metodlarına
// ihtiyacı yok — sadece token'dan kullanıcı çözmek yeterli.
// init_routes.go'da sessionService bu interface'i implicit olarak karşılar.
type SessionResolver interface {
	ResolveUser(ctx context.Context, token string) (*models.UserSnapshot, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
//
// WebSocket normal HTTP isteği olarak başlar ve "upgrade" ile kalıcı,
// çift yönlü bir bağlantıya dönüşür.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Production'da domain kontrolü yapılmalı.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub      *Hub
	resolver SessionResolver
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(hub *Hub, resolver SessionResolver) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Neden normal auth middleware kullanılmıyor?
// Tarayıcı WebSocket API'si custom header göndermeye izin vermez.
// Bu yüzden session token URL query parameter'ı olarak gönderilir:
//
//	ws://server/ws?token=SESSION_TOKEN
//
// Flow:
// 1. Query'den token al
// 2. Session'ı çöz (cache-first, durable-authoritative)
// 3. HTTP → WebSocket upgrade
// 4. Client oluştur, Hub'a kaydet
// 5. Ready event gönder, ReadPump/WritePump başlat
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.resolver.ResolveUser(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", snapshot.ID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: snapshot.ID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	// İlk event: ready — client kendi ID'sini ve online kullanıcıları öğrenir.
	client.sendEvent(Event{
		Op: OpReady,
		Data: ReadyData{
			UserID:        snapshot.ID,
			OnlineUserIDs: h.hub.GetOnlineUserIDs(),
		},
	})

	// WritePump ayrı goroutine'de, ReadPump mevcut goroutine'de çalışır.
	// ReadPump bağlantı kapanana kadar bloklar — handler erken dönmemeli.
	go client.WritePump()
	client.ReadPump()
}
