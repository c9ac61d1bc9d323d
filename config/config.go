// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar — her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Email    EmailConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/klik.db)
}

// RedisConfig, cache tier ayarları.
// Addr boşsa Redis kullanılmaz — in-memory cache store devreye girer
// (tek instance deploy için yeterli).
type RedisConfig struct {
	Addr     string
	Password string
}

// SessionConfig, session yaşam süresi ve cookie ayarları.
type SessionConfig struct {
	TTLDays            int  // Session ömrü, gün cinsinden (varsayılan: 7)
	SnapshotTTLMinutes int  // Kullanıcı snapshot cache TTL'i, dakika (varsayılan: 5)
	SecureCookie       bool // Production'da true — cookie sadece HTTPS'te gider
}

// EmailConfig, Resend email ayarları.
// Üçü birden set değilse email gönderimi devre dışı kalır.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string // Public URL — reset/verification linklerinde kullanılır
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için) —
// production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	ttlDays, err := strconv.Atoi(getEnv("SESSION_TTL_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_DAYS: %w", err)
	}

	snapTTL, err := strconv.Atoi(getEnv("SNAPSHOT_TTL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL_MINUTES: %w", err)
	}

	secureCookie, err := strconv.ParseBool(getEnv("SECURE_COOKIE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/klik.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Session: SessionConfig{
			TTLDays:            ttlDays,
			SnapshotTTLMinutes: snapTTL,
			SecureCookie:       secureCookie,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM", ""),
			AppURL:       getEnv("APP_URL", ""),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
