package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"dessertbox/models"
)

func TestNewSeedsCatalogAdminAndBoxes(t *testing.T) {
	ctx := context.Background()
	database, err := New(ctx)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var dessertTypes int64
	if err := database.Model(&models.DessertType{}).Count(&dessertTypes).Error; err != nil {
		t.Fatalf("count dessert types: %v", err)
	}
	if dessertTypes != 4 {
		t.Fatalf("expected 4 dessert types, got %d", dessertTypes)
	}

	var user models.User
	if err := database.Where("email = ?", AdminEmail).First(&user).Error; err != nil {
		t.Fatalf("fetch admin: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(AdminPassword)); err != nil {
		t.Fatalf("seeded admin password hash mismatch: %v", err)
	}

	var boxes []models.DessertBox
	if err := database.Order("id asc").Find(&boxes).Error; err != nil {
		t.Fatalf("list boxes: %v", err)
	}
	if len(boxes) < 2 {
		t.Fatalf("expected sample boxes, got %d", len(boxes))
	}
	if boxes[0].TotalPrice.StringFixed(2) != "312.00" {
		t.Fatalf("first sample total = %s, want 312.00", boxes[0].TotalPrice.StringFixed(2))
	}
}

func TestNewIsIdempotent(t *testing.T) {
	ctx := context.Background()
	first, err := New(ctx)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	second, err := New(ctx)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}

	var users int64
	if err := second.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 1 {
		t.Fatalf("expected a single seeded admin, got %d", users)
	}
	_ = first
}
