// Package main, klik backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Cache store'u seç (Redis varsa Redis, yoksa in-memory)
//  4. WebSocket Hub'ı başlat
//  5. Repository'leri oluştur (DB bağlantısı ile)
//  6. Service'leri oluştur (repository'ler + cache + hub ile)
//  7. Handler'ları oluştur (service'ler ile)
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
//  10. HTTP Server'ı başlat
//  11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekinaktas/klik/config"
	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/pkg/cache"
	"github.com/ekinaktas/klik/ws"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] klik server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to access embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Cache Store ───
	//
	// REDIS_ADDR set ise Redis kullanılır — multi-instance deploy'da session
	// cache ve rate limit sayaçları instance'lar arasında paylaşılır.
	// Set değilse in-memory store yeterlidir (tek instance).
	// Her iki durumda da SQLite authoritative kalır; cache kaybı sadece
	// bir sonraki lookup'ın DB'ye düşmesi demektir.
	var store cache.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("[main] failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()
		store = cache.NewRedisStore(client)
		log.Printf("[main] cache: redis (%s)", cfg.Redis.Addr)
	} else {
		store = cache.NewMemoryStore(time.Minute)
		log.Println("[main] cache: in-memory")
	}

	// ─── 4. WebSocket Hub ───
	//
	// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
	// `go hub.Run()` ayrı bir goroutine'de event loop başlatır:
	// register/unregister channel'larını dinler ve client map'ini günceller.
	// Hub aynı zamanda EventPublisher interface'ini implement eder —
	// service'ler hub'a doğrudan bağımlı olmak yerine interface üzerinden erişir.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 5-7. Repository → Service → Handler ───
	repos := initRepositories(db.Conn)
	svcs, limiter := initServices(db, repos, store, hub, cfg)
	handlers := initHandlers(svcs, limiter, hub, cfg)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()
	initRoutes(mux, handlers, svcs.Session, limiter)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // web dev server
			"http://localhost:5173", // Vite dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantılarını kapat, sonra HTTP server'ı —
	// yeni request kabul etmeyi durdurur, mevcut request'lerin
	// bitmesini bekler (5sn timeout).
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
