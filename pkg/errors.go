// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error'lar errors.New() ile sabit değer olarak tanımlanır ve
// errors.Is() ile karşılaştırılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Service katmanı bu error'ları fmt.Errorf("%w: ...") ile sararak döner,
// handler katmanı response.go'daki mapping ile HTTP status'a çevirir.
package pkg

import "errors"

// Domain-level error'lar.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrRateLimited   = errors.New("rate limited")
	ErrInternal      = errors.New("internal error")

	// ErrBlocked — bloklu bir kullanıcı çiftine arkadaşlık işlemi denendi.
	// Friendship state machine bu durumu diğer yetki hatalarından ayırt eder;
	// HTTP karşılığı yine 403'tür.
	ErrBlocked = errors.New("blocked")
)
