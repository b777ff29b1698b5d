package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/dispensa/internal/model"
)

const productColumns = `id, name, barcode, brand, category, image_url, quantity, expiry_date, created_at, updated_at`

// CreateProduct inserts a new product and returns it as stored.
func CreateProduct(ctx context.Context, db *sql.DB, p model.Product) (*model.Product, error) {
	if p.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO products (name, barcode, brand, category, image_url, quantity, expiry_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Barcode, p.Brand, p.Category, p.ImageURL, p.Quantity, p.ExpiryDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, or nil if it does not exist.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*model.Product, error) {
	row := db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// ListProducts returns every product ordered by name.
func ListProducts(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListProductsWithExpiry returns the products whose expiry text is present and
// non-empty. Whether the text parses is left to the caller.
func ListProductsWithExpiry(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE expiry_date IS NOT NULL AND expiry_date != ''
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products with expiry: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateProduct overwrites a product's fields. It reports whether the product
// existed.
func UpdateProduct(ctx context.Context, db *sql.DB, p model.Product) (bool, error) {
	if p.Quantity < 0 {
		return false, fmt.Errorf("quantity must not be negative")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE products SET name = ?, barcode = ?, brand = ?, category = ?, image_url = ?,
		        quantity = ?, expiry_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Name, p.Barcode, p.Brand, p.Category, p.ImageURL, p.Quantity, p.ExpiryDate, p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating product: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated product: %w", err)
	}
	return n > 0, nil
}

// DeleteProduct removes a product. Deleting a missing product is not an error.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	var expiry sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.Brand, &p.Category, &p.ImageURL,
		&p.Quantity, &expiry, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ExpiryDate = expiry.String
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
