package main

import (
	"fmt"
	"log"
	"os"

	"go-product-cms/internal/model"
	"go-product-cms/internal/repository"
	"go-product-cms/pkg/database"

	"github.com/joho/godotenv"
)

// Provisions an admin account, or resets the password of an existing one.
//
//	go run ./cmd/create-admin <email> <password> [full name]
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: create-admin <email> <password> [full name]")
		os.Exit(1)
	}
	email := os.Args[1]
	password := os.Args[2]
	fullName := "Administrator"
	if len(os.Args) > 3 {
		fullName = os.Args[3]
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.User{})

	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(email)
	if err == nil {
		// Existing account: reset password and reactivate
		if err := user.SetPassword(password); err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		user.IsActive = true
		if err := userRepo.Update(user); err != nil {
			log.Fatalf("Failed to update user: %v", err)
		}
		log.Printf("Password reset for %s", email)
		return
	}

	user = &model.User{
		Email:    email,
		FullName: fullName,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := userRepo.Create(user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	log.Printf("Admin user created: %s", email)
}
