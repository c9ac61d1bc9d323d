package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ekinaktas/klik/database"
	"github.com/ekinaktas/klik/models"
	"github.com/ekinaktas/klik/pkg"
	"github.com/ekinaktas/klik/pkg/email"
	"github.com/ekinaktas/klik/pkg/token"
	"github.com/ekinaktas/klik/repository"
)

// Token ömürleri.
const (
	bcryptCost           = 12
	resetTokenTTL        = 1 * time.Hour
	verificationTokenTTL = 24 * time.Hour
)

// AuthService interface'i — kimlik doğrulama akışları.
//
// Güvenlik kuralları:
//   - Login hatası HER ZAMAN generic'tir: "kullanıcı yok" ile "şifre yanlış"
//     ayırt edilemez (user enumeration koruması).
//   - ForgotPassword HER ZAMAN başarı döner — email'in kayıtlı olup
//     olmadığı dışarıdan öğrenilemez.
//   - Reset token'ları tek kullanımlıktır; başarılı redeem kullanıcının
//     TÜM bekleyen token'larını ve TÜM oturumlarını geçersiz kılar.
type AuthService interface {
	// Register, yeni kullanıcı kaydeder ve oturum açar.
	// Email doğrulama maili fire-and-forget gönderilir.
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, *models.Session, error)

	// Login, email + şifre ile oturum açar.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, *models.Session, error)

	// Logout, verilen oturumu kapatır.
	Logout(ctx context.Context, sessionToken string) error

	// Refresh, oturumun ömrünü şimdiden itibaren uzatır (sliding expiry).
	// Geçerli oturum yoksa hata döner, sessizce yeni oturum AÇMAZ.
	Refresh(ctx context.Context, sessionToken string) (*models.Session, error)

	// ForgotPassword, şifre sıfırlama akışını başlatır.
	ForgotPassword(ctx context.Context, emailAddr string) error

	// ResetPassword, reset token'ı ile yeni şifre belirler.
	ResetPassword(ctx context.Context, rawToken, newPassword string) error

	// VerifyEmail, doğrulama token'ı ile email'i onaylar.
	VerifyEmail(ctx context.Context, rawToken string) error

	// ChangePassword, oturum açmış kullanıcının şifresini değiştirir.
	// TÜM oturumlar kapatılır ve çağırana yeni bir oturum açılır —
	// kullanıcı şifre değiştirdi diye kendisi atılmaz.
	ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) (*models.Session, error)
}

// authService, AuthService implementasyonu.
type authService struct {
	db              *database.DB
	userRepo        repository.UserRepository
	resetTokenRepo  repository.OneTimeTokenRepository
	verifyTokenRepo repository.OneTimeTokenRepository
	sessions        SessionService
	mailer          email.EmailSender

	// dummyHash: bilinmeyen email'de de bcrypt maliyeti ödemek için
	// constructor'da bir kez üretilen sahte hash (timing koruması).
	dummyHash []byte
}

// NewAuthService, constructor.
// db, şifre sıfırlamanın çok adımlı yazısını tek transaction'da koşturmak
// için doğrudan enjekte edilir — diğer her şey interface üzerinden gelir.
func NewAuthService(
	db *database.DB,
	userRepo repository.UserRepository,
	resetTokenRepo repository.OneTimeTokenRepository,
	verifyTokenRepo repository.OneTimeTokenRepository,
	sessions SessionService,
	mailer email.EmailSender,
) AuthService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("klik-timing-pad"), bcryptCost)
	return &authService{
		db:              db,
		userRepo:        userRepo,
		resetTokenRepo:  resetTokenRepo,
		verifyTokenRepo: verifyTokenRepo,
		sessions:        sessions,
		mailer:          mailer,
		dummyHash:       dummyHash,
	}
}

func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, *models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	user := &models.User{
		Username:     req.Username,
		Email:        &req.Email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	// Doğrulama maili fire-and-forget: mail altyapısı kayıt akışını bloklamaz.
	go s.sendVerificationMail(user.ID, req.Email)

	log.Printf("[auth] user registered: %s", user.Username)
	return user, session, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, *models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, pkg.ErrNotFound) {
		// Hash yokken de bcrypt maliyeti öde — timing farkı kullanıcının
		// varlığını ele vermesin.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthorized)
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[auth] user logged in: %s", user.Username)
	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	err := s.sessions.InvalidateSession(ctx, sessionToken)
	if errors.Is(err, pkg.ErrNotFound) {
		// Zaten kapalı oturumu kapatmak hata değil — logout idempotent.
		return nil
	}
	return err
}

func (s *authService) Refresh(ctx context.Context, sessionToken string) (*models.Session, error) {
	return s.sessions.RefreshSession(ctx, sessionToken)
}

func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if errors.Is(err, pkg.ErrNotFound) {
		// Generic başarı: email kayıtlı değilse bile caller aynı yanıtı alır.
		log.Printf("[auth] password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	// Fırsat temizliği + eski token'ların iptali: kullanıcının aktif
	// reset token'ı her an en fazla bir tanedir.
	if err := s.resetTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[auth] reset token cleanup failed: %v", err)
	}
	if err := s.resetTokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	raw, err := token.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	resetToken := &models.OneTimeToken{
		UserID:    user.ID,
		TokenHash: token.Hash(raw),
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}
	if err := s.resetTokenRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, emailAddr, raw); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	log.Printf("[auth] password reset token issued for user %s", user.ID)
	return nil
}

// ResetPassword — redeem çok adımlı bir yazma olduğu için tek
// transaction'da koşar: token'ı harca + şifreyi değiştir + kullanıcının
// diğer tüm token'larını iptal et. Herhangi bir adım başarısız olursa
// hepsi geri alınır; token yarım harcanmış kalmaz.
func (s *authService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	req := &models.ResetPasswordRequest{Token: rawToken, NewPassword: newPassword}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	resetToken, err := s.resetTokenRepo.GetByTokenHash(ctx, token.Hash(req.Token))
	if errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}
	if err != nil {
		return err
	}

	if !resetToken.Usable(time.Now().UTC()) {
		return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		txResetRepo := repository.NewSQLitePasswordResetRepo(tx)
		txUserRepo := repository.NewSQLiteUserRepo(tx)

		// MarkUsed atomiktir (used_at IS NULL koşulu) — yarışan iki
		// redeem'den yalnızca biri buradan geçer.
		if err := txResetRepo.MarkUsed(ctx, resetToken.ID); err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
			}
			return err
		}
		if err := txUserRepo.UpdatePassword(ctx, resetToken.UserID, string(hash)); err != nil {
			return err
		}
		// Başarılı redeem kullanıcının BEKLEYEN diğer token'larını da öldürür.
		return txResetRepo.DeleteByUserID(ctx, resetToken.UserID)
	})
	if err != nil {
		return err
	}

	// Tüm oturumlar kapanır — çalınmış bir oturum yeni şifreyle yaşayamaz.
	if err := s.sessions.InvalidateUserSessions(ctx, resetToken.UserID); err != nil {
		log.Printf("[auth] failed to invalidate sessions after password reset: %v", err)
	}

	log.Printf("[auth] password reset completed for user %s", resetToken.UserID)
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, rawToken string) error {
	req := &models.VerifyEmailRequest{Token: rawToken}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	verifyToken, err := s.verifyTokenRepo.GetByTokenHash(ctx, token.Hash(req.Token))
	if errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}
	if err != nil {
		return err
	}

	if !verifyToken.Usable(time.Now().UTC()) {
		return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
	}

	if err := s.verifyTokenRepo.MarkUsed(ctx, verifyToken.ID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired token", pkg.ErrUnauthorized)
		}
		return err
	}

	if err := s.userRepo.MarkVerified(ctx, verifyToken.UserID); err != nil {
		return err
	}

	// is_verified snapshot'ta taşınır — cache'teki kopya düşürülmeli.
	s.sessions.InvalidateUserSnapshot(ctx, verifyToken.UserID)

	log.Printf("[auth] email verified for user %s", verifyToken.UserID)
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) (*models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return nil, fmt.Errorf("%w: current password is incorrect", pkg.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return nil, err
	}

	// Tüm oturumlar (mevcut dahil) kapanır, çağırana taze oturum açılır.
	if err := s.sessions.InvalidateUserSessions(ctx, userID); err != nil {
		log.Printf("[auth] failed to invalidate sessions after password change: %v", err)
	}

	session, err := s.sessions.CreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[auth] password changed for user %s", userID)
	return session, nil
}

// sendVerificationMail, kayıt sonrası doğrulama token'ı üretip mail atar.
// Ayrı goroutine'de koşar — kendi context'ini ve timeout'unu taşır.
func (s *authService) sendVerificationMail(userID, emailAddr string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	raw, err := token.Generate()
	if err != nil {
		log.Printf("[auth] failed to generate verification token: %v", err)
		return
	}

	verifyToken := &models.OneTimeToken{
		UserID:    userID,
		TokenHash: token.Hash(raw),
		ExpiresAt: time.Now().UTC().Add(verificationTokenTTL),
	}
	if err := s.verifyTokenRepo.Create(ctx, verifyToken); err != nil {
		log.Printf("[auth] failed to store verification token: %v", err)
		return
	}

	if err := s.mailer.SendEmailVerification(ctx, emailAddr, raw); err != nil {
		log.Printf("[auth] failed to send verification email: %v", err)
	}
}
