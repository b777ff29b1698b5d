package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The meal planner tables are the final
// shape only; earlier layouts are not carried.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    barcode     TEXT NOT NULL DEFAULT '',
    brand       TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    quantity    INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
    expiry_date TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_expiry ON products(expiry_date);

CREATE TABLE IF NOT EXISTS recipes (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    notes            TEXT,
    default_servings INTEGER
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
    id              INTEGER PRIMARY KEY,
    recipe_id       INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
    ingredient_name TEXT NOT NULL,
    quantity        NUMERIC,
    unit            TEXT
);

CREATE TABLE IF NOT EXISTS meal_plan_entries (
    id          INTEGER PRIMARY KEY,
    day_date    DATE NOT NULL,
    meal_type   TEXT NOT NULL,
    recipe_id   INTEGER REFERENCES recipes(id) ON DELETE SET NULL,
    custom_note TEXT,
    is_done     BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (day_date, meal_type)
);

CREATE TABLE IF NOT EXISTS shopping_items (
    id              INTEGER PRIMARY KEY,
    week_start      DATE NOT NULL,
    ingredient_name TEXT NOT NULL,
    quantity        NUMERIC,
    unit            TEXT,
    status          TEXT NOT NULL DEFAULT 'needed'
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
