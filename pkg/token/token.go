// Package token, yüksek entropili rastgele token üretimi ve hash'lenmesini sağlar.
//
// İki tür token vardır:
//   - Session token: bearer capability olarak kullanılır, DB'de olduğu gibi saklanır.
//   - Reset/verification token: email ile kullanıcıya gider, DB'de SADECE
//     SHA256 hash'i saklanır. DB sızsa bile token'lar kullanılamaz.
//
// crypto/rand kullanılır — math/rand ASLA (tahmin edilebilir).
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Generate, 32 byte (256 bit) rastgele token üretir ve hex string döner.
// 64 karakterlik çıktı — URL-safe, cookie-safe.
func Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash, plaintext token'ın SHA256 hash'ini hex encoded döner (64 karakter).
// Reset/verification token'ları DB'ye yazılmadan önce bundan geçer.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
