package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/meowkart/cat-ecommerce-golang/internal/config"
	"github.com/meowkart/cat-ecommerce-golang/internal/database"
	"github.com/meowkart/cat-ecommerce-golang/internal/models"
)

type productSeed struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int
	Rating      float64
	ReviewCount int
}

var products = []productSeed{
	{
		Name:        "Premium Cat Food - Salmon Delight",
		Description: "High-protein salmon-based dry food with essential nutrients for healthy cats",
		Price:       2074,
		Category:    "food",
		Stock:       50,
		Rating:      4.8,
		ReviewCount: 156,
	},
	{
		Name:        "Catnip Mouse Toy",
		Description: "Interactive toy filled with 100% natural catnip. Hours of entertainment!",
		Price:       835,
		Category:    "toys",
		Stock:       120,
		Rating:      4.9,
		ReviewCount: 423,
	},
	{
		Name:        "Cozy Cat Bed",
		Description: "Soft, warm bed perfect for napping. Machine washable cover.",
		Price:       4174,
		Category:    "beds",
		Stock:       30,
		Rating:      4.7,
		ReviewCount: 89,
	},
	{
		Name:        "Automatic Cat Feeder",
		Description: "Smart feeder with timer. Keep your cat on schedule!",
		Price:       7507,
		Category:    "accessories",
		Stock:       25,
		Rating:      4.6,
		ReviewCount: 234,
	},
	{
		Name:        "Cat Scratching Post",
		Description: "Tall scratching post with multiple levels and hiding spots",
		Price:       6676,
		Category:    "furniture",
		Stock:       15,
		Rating:      4.8,
		ReviewCount: 345,
	},
	{
		Name:        "Grooming Brush Kit",
		Description: "Complete grooming set: brush, comb, nail clipper, and more",
		Price:       2912,
		Category:    "grooming",
		Stock:       60,
		Rating:      4.7,
		ReviewCount: 198,
	},
	{
		Name:        "Interactive Laser Toy",
		Description: "USB-rechargeable laser pointer for active play sessions",
		Price:       1668,
		Category:    "toys",
		Stock:       90,
		Rating:      4.9,
		ReviewCount: 567,
	},
	{
		Name:        "Cat Treats - Tuna Flavor",
		Description: "Delicious, healthy treats made with real tuna. No artificial flavors.",
		Price:       1086,
		Category:    "food",
		Stock:       100,
		Rating:      4.9,
		ReviewCount: 678,
	},
}

func seedProducts(db *sqlx.DB, logger zerolog.Logger) error {
	// 1. Clear out existing products so the catalog is reset to a known state
	if _, err := db.Exec("DELETE FROM products"); err != nil {
		return err
	}

	// 2. Insert the catalog fixtures
	now := time.Now().UTC()
	for _, p := range products {
		_, err := db.Exec(
			`INSERT INTO products (id, name, slug, description, price, category, stock, rating, review_count, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), p.Name, slug.Make(p.Name), p.Description, p.Price,
			p.Category, p.Stock, p.Rating, p.ReviewCount, true, now, now)
		if err != nil {
			return err
		}
	}

	logger.Info().Int("count", len(products)).Msg("products seeded")
	return nil
}

func createAdminUser(db *sqlx.DB, logger zerolog.Logger) error {
	// 1. Skip if an admin account already exists
	var exists bool
	if err := db.Get(&exists, "SELECT COUNT(*) > 0 FROM users WHERE username = ?", "admin"); err != nil {
		return err
	}
	if exists {
		logger.Info().Msg("admin user already exists")
		return nil
	}

	// 2. Create the default admin account
	password := models.Password{}
	if err := password.Set("admin123"); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO users (id, username, email, password_hash, phone, is_admin, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), "admin", "admin@catshop.com", password.Hash, "9999999999", true, true, now, now)
	if err != nil {
		return err
	}

	logger.Info().Str("username", "admin").Str("email", "admin@catshop.com").Msg("admin user created")
	return nil
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on system environment variables")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run schema migration")
	}

	if err := seedProducts(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed products")
	}
	if err := createAdminUser(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to create admin user")
	}

	logger.Info().Msg("database seeding completed")
}
