package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/konveksipro/produksi-api/internal/application/dto"
	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
	"github.com/konveksipro/produksi-api/pkg/jwt"
)

// JWTConfig konfigurasi pembuatan token.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

var validRoles = map[string]bool{
	entity.RoleOwner:          true,
	entity.RoleKepalaProduksi: true,
	entity.RoleKepalaGudang:   true,
	entity.RolePemotong:       true,
	entity.RolePenjahit:       true,
	entity.RoleFinishing:      true,
}

// AuthUseCase autentikasi: registrasi dan login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase membangun use case auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Register membuat pengguna: hash password dengan bcrypt lalu simpan.
// ErrDuplicate bila email sudah terdaftar.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email dan password wajib diisi", domain.ErrInvalidInput)
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("%w: role %q tidak dikenal", domain.ErrInvalidInput, in.Role)
	}
	existing, err := uc.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %s sudah terdaftar", domain.ErrDuplicate, email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    time.Now(),
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login memverifikasi email/password, membuat JWT, dan mengembalikan token
// plus profil. Email tak dikenal dan password salah sengaja dibalas error yang
// sama agar tidak membocorkan keberadaan akun.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: email atau password salah", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: email atau password salah", domain.ErrUnauthorized)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
