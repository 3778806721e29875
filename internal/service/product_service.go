package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-product-cms/internal/model"
	"go-product-cms/internal/repository"
	"go-product-cms/internal/ws"
	"go-product-cms/pkg/validator"

	"gorm.io/gorm"
)

// The four outcomes every product operation can fail with. Handlers map
// these to HTTP statuses; nothing else escapes this layer.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("product not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProductService mediates every read and write against the product table:
// visibility rules for unauthenticated callers, ownership scoping for the
// "my products" listing, and editor stamping on every mutation.
type ProductService interface {
	ListPublished() ([]model.Product, error)
	ListOwned(identity string) ([]model.Product, error)
	ListAll(identity string) ([]model.Product, error)
	GetByID(identity string, id uint) (*model.Product, error)
	Create(identity string, req *model.CreateProductRequest) (*model.Product, error)
	Update(identity string, id uint, req *model.UpdateProductRequest) (*model.Product, error)
	SoftDelete(identity string, id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, hub *ws.Hub) ProductService {
	return &productService{
		productRepo: pRepo,
		wsHub:       hub,
	}
}

// storeErr wraps a repository failure so handlers see a single error kind.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func validationErr(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrInvalidInput, first.FailedField, first.Tag)
}

func (s *productService) ListPublished() ([]model.Product, error) {
	products, err := s.productRepo.FindPublished()
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *productService) ListOwned(identity string) ([]model.Product, error) {
	if identity == "" {
		return nil, ErrUnauthorized
	}
	products, err := s.productRepo.FindByCreator(identity)
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *productService) ListAll(identity string) ([]model.Product, error) {
	if identity == "" {
		return nil, ErrUnauthorized
	}
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

// GetByID returns the product for any authenticated identity. Unauthenticated
// callers only see published, non-deleted rows; everything else is reported as
// not found so existence never leaks.
func (s *productService) GetByID(identity string, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	if identity == "" && (product.Status != model.StatusPublished || product.IsDeleted) {
		return nil, ErrNotFound
	}

	// The column is free text at rest; don't pass through a value the enum
	// doesn't know.
	if !product.Status.Valid() {
		return nil, storeErr(fmt.Errorf("product %d has unknown status %q", product.ID, product.Status))
	}

	return product, nil
}

func (s *productService) Create(identity string, req *model.CreateProductRequest) (*model.Product, error) {
	if identity == "" {
		return nil, ErrUnauthorized
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	product := &model.Product{
		Name:      req.Name,
		Status:    model.StatusDraft,
		CreatedBy: identity,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Status != nil {
		product.Status = model.ProductStatus(*req.Status)
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, storeErr(err)
	}

	s.broadcast("product_created", product, identity,
		fmt.Sprintf("%s created product '%s'", identity, product.Name))

	return product, nil
}

// Update overwrites the row and stamps the acting identity as last editor,
// even when nothing but the deleted flag changed. Fields left out of the
// request keep their current value, so a PUT with is_deleted=false restores
// a soft-deleted product. There is deliberately no ownership check here: the
// admin index edits all rows, and concurrent writers race last-write-wins.
func (s *productService) Update(identity string, id uint, req *model.UpdateProductRequest) (*model.Product, error) {
	if identity == "" {
		return nil, ErrUnauthorized
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	current, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}
	status := current.Status
	if req.Status != nil {
		status = model.ProductStatus(*req.Status)
	}
	isDeleted := current.IsDeleted
	if req.IsDeleted != nil {
		isDeleted = *req.IsDeleted
	}

	now := time.Now()
	rows, err := s.productRepo.Update(id, map[string]interface{}{
		"product_name": req.Name,
		"product_desc": description,
		"status":       string(status),
		"is_deleted":   isDeleted,
		"updated_by":   identity,
		"updated_at":   now,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	updated := *current
	updated.Name = req.Name
	updated.Description = description
	updated.Status = status
	updated.IsDeleted = isDeleted
	updated.LastEditedBy = &identity
	updated.LastEditedAt = &now

	s.broadcast("product_updated", &updated, identity,
		fmt.Sprintf("%s updated product '%s'", identity, updated.Name))

	return &updated, nil
}

// SoftDelete hides the row from public reads and stamps the editor. Deleting
// an already-deleted product just re-stamps it.
func (s *productService) SoftDelete(identity string, id uint) error {
	if identity == "" {
		return ErrUnauthorized
	}

	now := time.Now()
	rows, err := s.productRepo.Update(id, map[string]interface{}{
		"is_deleted": true,
		"updated_by": identity,
		"updated_at": now,
	})
	if err != nil {
		return storeErr(err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	product, err := s.productRepo.FindByID(id)
	if err == nil {
		s.broadcast("product_deleted", product, identity,
			fmt.Sprintf("%s removed product '%s'", identity, product.Name))
	}

	return nil
}

// broadcast pushes a catalog_update event to live-page clients. Fire and
// forget: a slow hub never delays the request path.
func (s *productService) broadcast(action string, product *model.Product, identity, message string) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "catalog_update",
			"action": action,
			"product": map[string]interface{}{
				"product_id":   product.ID,
				"product_name": product.Name,
				"status":       product.Status,
				"is_deleted":   product.IsDeleted,
			},
			"actor":   identity,
			"message": message,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
