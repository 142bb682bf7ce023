// Package main seeds the database with an admin account, the payment
// provider rows with sealed credentials, and a pair of demo wallets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	"kopa/internal/config"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/services/auth"
	"kopa/internal/services/gateway"
	"kopa/internal/vault"

	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()
	ctx := context.Background()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	db, err := repositories.InitDB(
		&models.User{},
		&models.Merchant{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Provider{},
		&models.ReportChart{},
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	vaultKey, err := config.VaultKey()
	if err != nil {
		log.Fatalf("Failed to load vault key: %v", err)
	}
	credVault, err := vault.New(vaultKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential vault: %v", err)
	}

	ownerRepo := repositories.NewOwnerRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	authService := auth.NewService(ownerRepo, walletRepo, config.GetEnv("DEFAULT_CURRENCY", "USD"))

	// Admin account.
	if _, err := ownerRepo.GetUserByEmail(ctx, adminEmail); err == nil {
		log.Println("Admin user already exists")
	} else if errors.Is(err, repositories.ErrOwnerNotFound) {
		if _, _, err := authService.Register(ctx, auth.RegisterRequest{
			Email:    adminEmail,
			Password: adminPassword,
			Username: "admin",
			Role:     models.RoleAdmin,
		}); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("Admin account created")
	} else {
		log.Fatalf("Failed to check admin user: %v", err)
	}

	// Provider rows with sealed credentials.
	seedProvider(db, credVault, models.ProviderStripe, os.Getenv("STRIPE_SECRET_KEY"))
	seedProvider(db, credVault, models.ProviderMockBank, "mock_secret")

	// Demo owners with wallets.
	if _, err := ownerRepo.GetUserByEmail(ctx, "demo@kopa.dev"); errors.Is(err, repositories.ErrOwnerNotFound) {
		if _, _, err := authService.Register(ctx, auth.RegisterRequest{
			Email:    "demo@kopa.dev",
			Phone:    "+15550100",
			Username: "demo",
			Password: "demo-password",
		}); err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		log.Println("Demo user created")
	}

	if _, err := ownerRepo.GetMerchantByName(ctx, "Demo Coffee"); errors.Is(err, repositories.ErrOwnerNotFound) {
		merchant := &models.Merchant{
			BusinessName: "Demo Coffee",
			BusinessType: "cafe",
			Email:        "coffee@kopa.dev",
		}
		if err := ownerRepo.CreateMerchant(ctx, merchant); err != nil {
			log.Fatalf("Failed to create demo merchant: %v", err)
		}
		wallet := &models.Wallet{
			MerchantID:   &merchant.ID,
			WalletNumber: auth.NewWalletNumber(),
			Currency:     config.GetEnv("DEFAULT_CURRENCY", "USD"),
			Status:       models.WalletStatusActive,
		}
		if err := walletRepo.Create(wallet); err != nil {
			log.Fatalf("Failed to create demo merchant wallet: %v", err)
		}
		log.Println("Demo merchant created")
	}

	log.Println("Seed complete")
}

// seedProvider inserts a provider row with chacha20-sealed credentials.
// Existing rows are left alone so rotating a key means updating the row,
// not re-seeding.
func seedProvider(db *gorm.DB, credVault *vault.Vault, name, secretKey string) {
	var existing models.Provider
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		log.Printf("Provider %s already exists", name)
		return
	}
	if secretKey == "" {
		log.Printf("No credentials configured for %s, skipping", name)
		return
	}

	raw, err := json.Marshal(gateway.Credentials{SecretKey: secretKey})
	if err != nil {
		log.Fatalf("Failed to marshal %s credentials: %v", name, err)
	}
	sealed, err := credVault.Seal(raw)
	if err != nil {
		log.Fatalf("Failed to seal %s credentials: %v", name, err)
	}

	provider := &models.Provider{Name: name, Enabled: true, Credentials: sealed}
	if err := db.Create(provider).Error; err != nil {
		log.Fatalf("Failed to create provider %s: %v", name, err)
	}
	log.Printf("Provider %s seeded", name)
}
