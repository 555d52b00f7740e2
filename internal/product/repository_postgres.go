package product

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	selectColumns = `product_id, name, description, category, image, price, stock, created_at, updated_at`

	listQuery = `SELECT ` + selectColumns + ` FROM products ORDER BY product_id`

	getByIDQuery = `SELECT ` + selectColumns + ` FROM products WHERE product_id = $1`

	// preserves the order of the requested ids in the result set
	listByIDsQuery = `
        SELECT ` + selectColumns + `
        FROM products
        WHERE product_id = ANY($1::int[])
        ORDER BY array_position($1::int[], product_id)
    `
)

func (r *PostgresRepository) List() []Product {
	rows, err := r.db.Query(listQuery)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	var p Product
	err := r.db.QueryRow(getByIDQuery, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Image, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(listByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows), nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(`
        INSERT INTO products (name, description, category, image, price, stock, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now(), now())
        RETURNING product_id, created_at, updated_at
    `, p.Name, p.Description, p.Category, p.Image, p.Price, p.Stock).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	err := r.db.QueryRow(`
        UPDATE products
        SET name = $1, description = $2, category = $3, image = $4, price = $5, stock = $6, updated_at = now()
        WHERE product_id = $7
        RETURNING product_id, created_at, updated_at
    `, p.Name, p.Description, p.Category, p.Image, p.Price, p.Stock, id).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProducts(rows *sql.Rows) []Product {
	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Image, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
