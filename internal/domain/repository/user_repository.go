package repository

import "github.com/konveksipro/produksi-api/internal/domain/entity"

// UserRepository port persistensi pengguna.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	ListByRole(role string) ([]*entity.User, error)
}
