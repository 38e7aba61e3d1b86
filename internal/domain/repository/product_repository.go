package repository

import "github.com/konveksipro/produksi-api/internal/domain/entity"

// ProductRepository port persistensi produk.
type ProductRepository interface {
	Create(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
