package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Open initializes and returns the connection pool for the given driver.
// "mysql" is used in production; "sqlite" backs local development and the
// test suite (the tests open ":memory:" databases through this package).
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "mysql" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// sqlite serializes writers anyway; a single connection avoids
		// "database is locked" errors under concurrent requests.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// schema uses only DDL accepted by both MySQL and sqlite. IDs are UUID
// strings assigned by the application, so no auto-increment columns.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36) PRIMARY KEY,
		username      VARCHAR(80) NOT NULL UNIQUE,
		email         VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		phone         VARCHAR(20),
		address       VARCHAR(255),
		city          VARCHAR(100),
		state         VARCHAR(100),
		postal_code   VARCHAR(10),
		country       VARCHAR(100) NOT NULL DEFAULT 'India',
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id           VARCHAR(36) PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		slug         VARCHAR(255) NOT NULL,
		description  TEXT,
		price        BIGINT NOT NULL,
		category     VARCHAR(50) NOT NULL,
		image_url    VARCHAR(500),
		stock        INTEGER NOT NULL DEFAULT 0,
		rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id         VARCHAR(36) PRIMARY KEY,
		user_id    VARCHAR(36) NOT NULL,
		product_id VARCHAR(36) NOT NULL,
		quantity   INTEGER NOT NULL DEFAULT 1,
		added_at   DATETIME NOT NULL,
		UNIQUE (user_id, product_id),
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               VARCHAR(36) PRIMARY KEY,
		user_id          VARCHAR(36) NOT NULL,
		total_price      BIGINT NOT NULL,
		tax              BIGINT NOT NULL DEFAULT 0,
		status           VARCHAR(50) NOT NULL DEFAULT 'pending',
		shipping_address TEXT NOT NULL,
		payment_method   VARCHAR(50),
		transaction_id   VARCHAR(255),
		order_date       DATETIME NOT NULL,
		delivery_date    DATETIME,
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id                VARCHAR(36) PRIMARY KEY,
		order_id          VARCHAR(36) NOT NULL,
		product_id        VARCHAR(36) NOT NULL,
		quantity          INTEGER NOT NULL,
		price_at_purchase BIGINT NOT NULL,
		created_at        DATETIME NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id            VARCHAR(36) PRIMARY KEY,
		product_id    VARCHAR(36) NOT NULL,
		user_id       VARCHAR(36) NOT NULL,
		rating        INTEGER NOT NULL,
		comment       TEXT,
		is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		helpful_count INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL,
		UNIQUE (product_id, user_id),
		FOREIGN KEY (product_id) REFERENCES products (id),
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
}

// Migrate creates any missing tables. It is idempotent and runs at startup
// and at the beginning of every test.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
