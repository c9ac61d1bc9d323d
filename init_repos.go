// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository DB bağlantısını alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/ekinaktas/klik/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı ayrı değişkenler yerine tek struct kullanmak:
// 1. Fonksiyon imzalarını temiz tutar
// 2. Yeni repository eklendiğinde sadece struct + initRepositories güncellenir
// 3. IDE auto-complete ile kolay erişim (repos.User, repos.Friendship, vb.)
type Repositories struct {
	User         repository.UserRepository
	Session      repository.SessionRepository
	Friendship   repository.FriendshipRepository
	Notification repository.NotificationRepository
	ResetToken   repository.OneTimeTokenRepository
	VerifyToken  repository.OneTimeTokenRepository
}

// initRepositories, tüm repository'leri aynı DB bağlantısı üzerinde oluşturur.
// *sql.DB, repository'lerin beklediği database.TxQuerier interface'ini karşılar —
// transaction gereken yerlerde aynı constructor'lar *sql.Tx ile de çağrılabilir.
func initRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(db),
		Session:      repository.NewSQLiteSessionRepo(db),
		Friendship:   repository.NewSQLiteFriendshipRepo(db),
		Notification: repository.NewSQLiteNotificationRepo(db),
		ResetToken:   repository.NewSQLitePasswordResetRepo(db),
		VerifyToken:  repository.NewSQLiteEmailVerificationRepo(db),
	}
}
