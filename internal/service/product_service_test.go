package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-product-cms/internal/model"
	"go-product-cms/internal/repository"
	"go-product-cms/internal/service"
	"go-product-cms/internal/ws"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) service.ProductService {
	t.Helper()

	// Shared-cache in-memory DB, unique per test, so the pool sees one database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	return service.NewProductService(repository.NewProductRepo(db), hub)
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func mustCreate(t *testing.T, svc service.ProductService, identity, name string, status *string) *model.Product {
	t.Helper()
	p, err := svc.Create(identity, &model.CreateProductRequest{Name: name, Status: status})
	if err != nil {
		t.Fatalf("create %q failed: %v", name, err)
	}
	return p
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)

	p := mustCreate(t, svc, "a@x.com", "Widget", nil)

	if p.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if p.Status != model.StatusDraft {
		t.Fatalf("expected default status Draft, got %q", p.Status)
	}
	if p.Description != "" {
		t.Fatalf("expected empty description, got %q", p.Description)
	}
	if p.CreatedBy != "a@x.com" {
		t.Fatalf("expected creator a@x.com, got %q", p.CreatedBy)
	}

	fetched, err := svc.GetByID("a@x.com", p.ID)
	if err != nil {
		t.Fatalf("get after create failed: %v", err)
	}
	if fetched.LastEditedBy != nil || fetched.LastEditedAt != nil {
		t.Fatalf("expected no editor stamp before first edit, got %v / %v", fetched.LastEditedBy, fetched.LastEditedAt)
	}
}

func TestCreateRequiresIdentityAndName(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create("", &model.CreateProductRequest{Name: "Widget"}); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty identity, got %v", err)
	}

	if _, err := svc.Create("a@x.com", &model.CreateProductRequest{Name: ""}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}

	// The rejected create must not have inserted anything
	all, err := svc.ListAll("a@x.com")
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty table after rejected creates, got %d rows", len(all))
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create("a@x.com", &model.CreateProductRequest{
		Name:   "Widget",
		Status: strptr("Live"),
	})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestListPublishedFiltersStatusAndDeleted(t *testing.T) {
	svc := newTestService(t)

	mustCreate(t, svc, "a@x.com", "draft", nil)
	mustCreate(t, svc, "a@x.com", "archived", strptr("Archived"))
	pub := mustCreate(t, svc, "a@x.com", "published", strptr("Published"))
	gone := mustCreate(t, svc, "b@x.com", "published-then-deleted", strptr("Published"))

	if err := svc.SoftDelete("b@x.com", gone.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	live, err := svc.ListPublished()
	if err != nil {
		t.Fatalf("list published failed: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected exactly 1 live product, got %d", len(live))
	}
	if live[0].ID != pub.ID {
		t.Fatalf("expected product %d, got %d", pub.ID, live[0].ID)
	}
}

func TestListOwnedScopedToCreatorIncludingDeleted(t *testing.T) {
	svc := newTestService(t)

	mine := mustCreate(t, svc, "a@x.com", "mine", nil)
	mustCreate(t, svc, "b@x.com", "theirs", nil)

	if err := svc.SoftDelete("a@x.com", mine.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	owned, err := svc.ListOwned("a@x.com")
	if err != nil {
		t.Fatalf("list owned failed: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("expected 1 owned product, got %d", len(owned))
	}
	if owned[0].CreatedBy != "a@x.com" {
		t.Fatalf("owned listing leaked a foreign product: %q", owned[0].CreatedBy)
	}
	if !owned[0].IsDeleted {
		t.Fatalf("expected owner to still see their soft-deleted product")
	}

	if _, err := svc.ListOwned(""); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty identity, got %v", err)
	}
}

func TestListOrderedNewestFirst(t *testing.T) {
	svc := newTestService(t)

	first := mustCreate(t, svc, "a@x.com", "first", nil)
	time.Sleep(5 * time.Millisecond)
	second := mustCreate(t, svc, "a@x.com", "second", nil)

	owned, err := svc.ListOwned("a@x.com")
	if err != nil {
		t.Fatalf("list owned failed: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 products, got %d", len(owned))
	}
	if owned[0].ID != second.ID || owned[1].ID != first.ID {
		t.Fatalf("expected newest first, got order %d, %d", owned[0].ID, owned[1].ID)
	}
}

func TestGetByIDVisibility(t *testing.T) {
	svc := newTestService(t)

	draft := mustCreate(t, svc, "a@x.com", "draft", nil)
	pub := mustCreate(t, svc, "a@x.com", "published", strptr("Published"))

	// Anonymous caller: drafts look like they don't exist, not like a login wall
	if _, err := svc.GetByID("", draft.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for anonymous draft fetch, got %v", err)
	}

	// Anonymous caller can read a published product
	if _, err := svc.GetByID("", pub.ID); err != nil {
		t.Fatalf("anonymous published fetch failed: %v", err)
	}

	// Deleting hides it from anonymous readers again
	if err := svc.SoftDelete("a@x.com", pub.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if _, err := svc.GetByID("", pub.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for anonymous deleted fetch, got %v", err)
	}

	// Any authenticated identity may fetch any row, deleted included
	if _, err := svc.GetByID("b@x.com", draft.ID); err != nil {
		t.Fatalf("authenticated fetch of foreign draft failed: %v", err)
	}
	if _, err := svc.GetByID("b@x.com", pub.ID); err != nil {
		t.Fatalf("authenticated fetch of deleted product failed: %v", err)
	}

	if _, err := svc.GetByID("a@x.com", 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdateStampsEditor(t *testing.T) {
	svc := newTestService(t)

	p := mustCreate(t, svc, "a@x.com", "Widget", nil)

	// Edit by a different identity; no ownership check applies to writes
	updated, err := svc.Update("b@x.com", p.ID, &model.UpdateProductRequest{Name: "Widget"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.LastEditedBy == nil || *updated.LastEditedBy != "b@x.com" {
		t.Fatalf("expected editor b@x.com, got %v", updated.LastEditedBy)
	}
	if updated.LastEditedAt == nil || updated.LastEditedAt.Before(p.CreatedAt) {
		t.Fatalf("expected edit timestamp at or after creation, got %v", updated.LastEditedAt)
	}
	if updated.CreatedBy != "a@x.com" {
		t.Fatalf("creator must not change on edit, got %q", updated.CreatedBy)
	}

	firstEdit := *updated.LastEditedAt
	time.Sleep(5 * time.Millisecond)

	// A second edit that changes nothing still re-stamps the editor fields
	again, err := svc.Update("c@x.com", p.ID, &model.UpdateProductRequest{Name: "Widget"})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if *again.LastEditedBy != "c@x.com" {
		t.Fatalf("expected editor c@x.com, got %q", *again.LastEditedBy)
	}
	if again.LastEditedAt.Before(firstEdit) {
		t.Fatalf("edit timestamp went backwards: %v < %v", again.LastEditedAt, firstEdit)
	}
}

func TestUpdateValidationAndMissing(t *testing.T) {
	svc := newTestService(t)

	p := mustCreate(t, svc, "a@x.com", "Widget", nil)

	if _, err := svc.Update("", p.ID, &model.UpdateProductRequest{Name: "Widget"}); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Update("a@x.com", p.ID, &model.UpdateProductRequest{Name: ""}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.Update("a@x.com", p.ID, &model.UpdateProductRequest{Name: "Widget", Status: strptr("Retired")}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.Update("a@x.com", 9999, &model.UpdateProductRequest{Name: "Widget"}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	svc := newTestService(t)

	p, err := svc.Create("a@x.com", &model.CreateProductRequest{
		Name:        "Widget",
		Description: strptr("original description"),
		Status:      strptr("Published"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.SoftDelete("a@x.com", p.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	// Rename only: description, status, and the deleted flag all survive
	updated, err := svc.Update("a@x.com", p.ID, &model.UpdateProductRequest{Name: "Widget v2"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Description != "original description" {
		t.Fatalf("description was lost: %q", updated.Description)
	}
	if updated.Status != model.StatusPublished {
		t.Fatalf("status was lost: %q", updated.Status)
	}
	if !updated.IsDeleted {
		t.Fatalf("deleted flag must survive an update that omits it")
	}
}

func TestSoftDeleteIdempotentAndRestore(t *testing.T) {
	svc := newTestService(t)

	p := mustCreate(t, svc, "a@x.com", "Widget", strptr("Published"))

	if err := svc.SoftDelete("a@x.com", p.ID); err != nil {
		t.Fatalf("first soft delete failed: %v", err)
	}
	if err := svc.SoftDelete("b@x.com", p.ID); err != nil {
		t.Fatalf("second soft delete must succeed, got %v", err)
	}

	fetched, err := svc.GetByID("a@x.com", p.ID)
	if err != nil {
		t.Fatalf("fetch after delete failed: %v", err)
	}
	if !fetched.IsDeleted {
		t.Fatalf("expected deleted flag set")
	}
	if fetched.LastEditedBy == nil || *fetched.LastEditedBy != "b@x.com" {
		t.Fatalf("expected re-stamped editor b@x.com, got %v", fetched.LastEditedBy)
	}

	if err := svc.SoftDelete("", p.ID); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.SoftDelete("a@x.com", 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Restore via update with an explicit is_deleted=false
	restored, err := svc.Update("a@x.com", p.ID, &model.UpdateProductRequest{
		Name:      "Widget",
		IsDeleted: boolptr(false),
	})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.IsDeleted {
		t.Fatalf("expected deleted flag cleared after restore")
	}

	live, err := svc.ListPublished()
	if err != nil {
		t.Fatalf("list published failed: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected restored product back in the live listing, got %d rows", len(live))
	}
}

// Full lifecycle: draft -> published -> soft-deleted, checked against both
// the public and the owner-scoped listings at each step.
func TestLifecycle(t *testing.T) {
	svc := newTestService(t)

	p := mustCreate(t, svc, "a@x.com", "Widget", nil)

	live, _ := svc.ListPublished()
	if len(live) != 0 {
		t.Fatalf("draft must not be live, got %d rows", len(live))
	}
	owned, _ := svc.ListOwned("a@x.com")
	if len(owned) != 1 {
		t.Fatalf("draft must be visible to its owner, got %d rows", len(owned))
	}

	if _, err := svc.Update("a@x.com", p.ID, &model.UpdateProductRequest{
		Name:   "Widget",
		Status: strptr("Published"),
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	live, _ = svc.ListPublished()
	if len(live) != 1 {
		t.Fatalf("published product missing from live listing")
	}

	if err := svc.SoftDelete("a@x.com", p.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	live, _ = svc.ListPublished()
	if len(live) != 0 {
		t.Fatalf("deleted product still in live listing")
	}
	owned, _ = svc.ListOwned("a@x.com")
	if len(owned) != 1 || !owned[0].IsDeleted {
		t.Fatalf("owner must still see the deleted product with the flag set")
	}
}
