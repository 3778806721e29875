package model

import "time"

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	StatusDraft     ProductStatus = "Draft"
	StatusPublished ProductStatus = "Published"
	StatusArchived  ProductStatus = "Archived"
)

// Valid reports whether s is one of the three known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Product is a CMS catalog entry. Soft-deleted rows stay in the table with
// IsDeleted set; only the public queries filter them out.
type Product struct {
	ID          uint          `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	Name        string        `gorm:"column:product_name;type:varchar(255);not null" json:"product_name" validate:"required"`
	Description string        `gorm:"column:product_desc;type:text" json:"product_desc"`
	Status      ProductStatus `gorm:"column:status;type:varchar(20);not null;default:'Draft';check:status IN ('Draft','Published','Archived')" json:"status"`
	CreatedBy   string        `gorm:"column:created_by;type:varchar(255);not null" json:"created_by"`
	CreatedAt   time.Time     `gorm:"column:created_at" json:"created_at"`

	// Editor tracking. Both are nil until the first edit, then always set together.
	LastEditedBy *string    `gorm:"column:updated_by;type:varchar(255)" json:"updated_by,omitempty"`
	LastEditedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	IsDeleted bool `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`
}

func (Product) TableName() string {
	return "products"
}

// CreateProductRequest carries the writable fields for a new product.
// Description and Status are optional and default to "" / Draft.
type CreateProductRequest struct {
	Name        string  `json:"product_name" validate:"required"`
	Description *string `json:"product_desc"`
	Status      *string `json:"status" validate:"omitempty,product_status"`
}

// UpdateProductRequest carries the writable fields for an edit. Nil fields
// keep their current value; an explicit IsDeleted=false is the restore path.
type UpdateProductRequest struct {
	Name        string  `json:"product_name" validate:"required"`
	Description *string `json:"product_desc"`
	Status      *string `json:"status" validate:"omitempty,product_status"`
	IsDeleted   *bool   `json:"is_deleted"`
}
