package cart

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

// PostgresRepository stores one row per user in the carts table with the item
// collection serialized as JSONB. A save replaces the whole collection in a
// single UPDATE, so the previously committed record survives any failure.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	getCartQuery = `SELECT cart_id, user_id, items, version, created_at, updated_at FROM carts WHERE user_id = $1`

	createCartQuery = `
        INSERT INTO carts (cart_id, user_id, items, version, created_at, updated_at)
        VALUES ($1, $2, '[]', 1, now(), now())
        ON CONFLICT (user_id) DO NOTHING
    `

	saveCartQuery = `
        UPDATE carts
        SET items = $1, version = version + 1, updated_at = now()
        WHERE user_id = $2 AND version = $3
        RETURNING version, updated_at
    `
)

func (r *PostgresRepository) Get(userID int) (Cart, error) {
	return r.scanCart(r.db.QueryRow(getCartQuery, userID))
}

func (r *PostgresRepository) Create(userID int) (Cart, error) {
	if _, err := r.db.Exec(createCartQuery, uuid.New(), userID); err != nil {
		return Cart{}, err
	}
	// the row may have been created by a concurrent request; read back either way
	return r.Get(userID)
}

func (r *PostgresRepository) Save(c Cart) (Cart, error) {
	raw, err := json.Marshal(c.Items)
	if err != nil {
		return Cart{}, err
	}

	err = r.db.QueryRow(saveCartQuery, string(raw), c.UserID, c.Version).Scan(&c.Version, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Cart{}, ErrVersionConflict
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) scanCart(row *sql.Row) (Cart, error) {
	var c Cart
	var raw []byte
	err := row.Scan(&c.ID, &c.UserID, &raw, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Cart{}, ErrCartNotFound
	}
	if err != nil {
		return Cart{}, err
	}

	c.Items = []CartItem{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Items); err != nil {
			return Cart{}, err
		}
	}
	return c, nil
}
