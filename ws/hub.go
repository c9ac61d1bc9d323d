package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının WebSocket event'leri göndermek için
// kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Böylece:
// 1. Service test edilirken mock EventPublisher kullanılabilir
// 2. Hub implementasyonu değişse bile service kodu etkilenmez
type EventPublisher interface {
	BroadcastToUser(userID string, event Event)
	BroadcastToUsers(userIDs []string, event Event)
	GetOnlineUserIDs() []string
	DisconnectUser(userID string)
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Hub.Run() goroutine'i register/unregister channel'larından `select` ile okur:
// - register channel'dan yeni client gelirse → clients map'e ekle
// - unregister channel'dan client gelirse → map'ten çıkar
type Hub struct {
	// clients: userID → Client set (bir kullanıcının birden fazla tab'ı olabilir).
	// Go'da set yoktur — map[*Client]bool kullanılır, bool değeri her zaman true.
	clients map[string]map[*Client]bool

	// mu: clients map'ini koruyan read-write mutex.
	// Broadcast'ler okuma ağırlıklıdır — RLock ile paralel çalışabilirler.
	mu sync.RWMutex

	// register/unregister: Client giriş/çıkış sinyalleri.
	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle artırabilir.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// addClient, yeni bir client'ı Hub'a ekler.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	log.Printf("[ws] client connected: user=%s (total connections for user: %d)",
		client.userID, len(h.clients[client.userID]))
}

// removeClient, bir client'ı Hub'dan çıkarır ve send channel'ını kapatır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			// Kullanıcının başka bağlantısı kalmadıysa map'ten sil
			if len(clients) == 0 {
				delete(h.clients, client.userID)
				log.Printf("[ws] user fully disconnected: %s", client.userID)
			} else {
				log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
					client.userID, len(clients))
			}
		}
	}
}

// BroadcastToUser, belirli bir kullanıcının tüm bağlantılarına event gönderir.
// Kullanıcı bağlı değilse event sessizce düşer — bildirimler zaten DB'de
// kalıcıdır, WS sadece anlık teslimat kanalıdır.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	data, ok := h.marshalEvent(&event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendToUserLocked(userID, data)
}

// BroadcastToUsers, birden fazla kullanıcıya aynı event'i gönderir.
// Profil güncellemesinin tüm arkadaşlara duyurulması için kullanılır.
func (h *Hub) BroadcastToUsers(userIDs []string, event Event) {
	data, ok := h.marshalEvent(&event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		h.sendToUserLocked(userID, data)
	}
}

// sendToUserLocked, marshal edilmiş veriyi kullanıcının tüm bağlantılarına yazar.
// Çağıran h.mu'yu tutmak ZORUNDADIR.
func (h *Hub) sendToUserLocked(userID string, data []byte) {
	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Buffer dolu — bu client yavaş, kapat.
			// unregister'a ayrı goroutine ile gönderilir; doğrudan göndermek
			// Run() addClient/removeClient için mutex beklerken deadlock yaratır.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// marshalEvent, seq atayıp event'i JSON'a çevirir.
func (h *Hub) marshalEvent(event *Event) ([]byte, bool) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event %s: %v", event.Op, err)
		return nil, false
	}
	return data, true
}

// GetOnlineUserIDs, bağlı olan tüm kullanıcı ID'lerini döner.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// DisconnectUser, kullanıcının tüm bağlantılarını kapatır.
// Session invalidation sonrası çağrılır — kapanan oturumun canlı
// WS bağlantısı da düşürülür.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, userID)
		log.Printf("[ws] user forcibly disconnected: %s", userID)
	}
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
