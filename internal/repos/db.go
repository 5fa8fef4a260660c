package repos

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"phonestore/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite has a single writer, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the demo catalog if the phones table is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Catalog
CREATE TABLE IF NOT EXISTS phones(
  id TEXT PRIMARY KEY,
  brand TEXT NOT NULL,
  model TEXT NOT NULL,
  price NUMERIC NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  colors_json TEXT NOT NULL DEFAULT '[]',
  storage_json TEXT NOT NULL DEFAULT '[]',
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_phones_brand ON phones(LOWER(brand));
CREATE INDEX IF NOT EXISTS idx_phones_model ON phones(LOWER(model));

-- Durable key-value store (carts live here, one key per browser profile)
CREATE TABLE IF NOT EXISTS kv_store(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM phones`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo phones")
	return seedPhones(context.Background(), NewPhoneRepo(db), demoPhones())
}

// seedPhones upserts every record, stopping at the first failure.
func seedPhones(ctx context.Context, repo *PhoneRepo, phones []domain.PhoneModel) error {
	for _, m := range phones {
		if err := repo.Upsert(ctx, m); err != nil {
			return fmt.Errorf("seed phone %s: %w", m.ID, err)
		}
	}
	return nil
}

func opt(size string, increment float64) domain.StorageOption {
	return domain.StorageOption{Size: size, PriceIncrement: increment}
}

// demoPhones is the catalog a fresh database starts with. Images are served
// from web/static/img.
func demoPhones() []domain.PhoneModel {
	return []domain.PhoneModel{
		{ID: "APL-IP13", Brand: "Apple", Model: "iPhone 13", Price: 799, Image: "/static/img/APL-IP13.svg",
			Colors: []string{"Black", "White", "Blue"}, StorageOptions: []domain.StorageOption{opt("128GB", 0), opt("256GB", 100), opt("512GB", 300)}},
		{ID: "APL-IP14P", Brand: "Apple", Model: "iPhone 14 Pro", Price: 999, Image: "/static/img/APL-IP14P.svg",
			Colors: []string{"Space Black", "Silver", "Deep Purple"}, StorageOptions: []domain.StorageOption{opt("128GB", 0), opt("256GB", 100), opt("1TB", 500)}},
		{ID: "APL-IPSE", Brand: "Apple", Model: "iPhone SE", Price: 429, Image: "/static/img/APL-IPSE.svg",
			Colors: []string{"Midnight", "Starlight", "Red"}, StorageOptions: []domain.StorageOption{opt("64GB", 0), opt("128GB", 50)}},
		{ID: "SMS-S23", Brand: "Samsung", Model: "Galaxy S23", Price: 899, Image: "/static/img/SMS-S23.svg",
			Colors: []string{"Phantom Black", "Cream", "Green"}, StorageOptions: []domain.StorageOption{opt("128GB", 0), opt("256GB", 60)}},
		{ID: "SMS-A54", Brand: "Samsung", Model: "Galaxy A54", Price: 449, Image: "/static/img/SMS-A54.svg",
			Colors: []string{"Black", "White"}, StorageOptions: []domain.StorageOption{opt("128GB", 0), opt("256GB", 70)}},
		{ID: "GGL-PX8", Brand: "Google", Model: "Pixel 8", Price: 699, Image: "/static/img/GGL-PX8.svg",
			Colors: []string{"Obsidian", "Hazel", "Rose"}, StorageOptions: []domain.StorageOption{opt("128GB", 0), opt("256GB", 60)}},
		{ID: "XMI-13T", Brand: "Xiaomi", Model: "13T", Price: 649, Image: "/static/img/XMI-13T.svg",
			Colors: []string{"Black", "Meadow Green", "Alpine Blue"}, StorageOptions: []domain.StorageOption{opt("256GB", 0)}},
	}
}
