package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `user_id, email, password, first_name, last_name, created_at, updated_at`

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return r.get(`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return r.get(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) Create(u User) (User, error) {
	err := r.db.QueryRow(`
        INSERT INTO users (email, password, first_name, last_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, now(), now())
        RETURNING user_id, created_at, updated_at
    `, u.Email, u.Password, u.FirstName, u.LastName).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) get(query string, arg interface{}) (User, error) {
	var u User
	err := r.db.QueryRow(query, arg).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
