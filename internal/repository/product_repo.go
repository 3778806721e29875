package repository

import (
	"go-product-cms/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindPublished() ([]model.Product, error)
	FindByCreator(email string) ([]model.Product, error)
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	Update(id uint, fields map[string]interface{}) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindPublished() ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("status = ? AND is_deleted = ?", model.StatusPublished, false).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCreator(email string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("created_by = ?", email).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update issues a single UPDATE with the given columns and reports how many
// rows matched, so callers can distinguish a missing id from a no-op change.
func (r *productRepo) Update(id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.Model(&model.Product{}).Where("product_id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}
