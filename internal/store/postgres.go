package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/aquamanager/internal/model"
)

// postgresStore - документ в строке app_state, ключ - ключ хранилища
type postgresStore struct {
	database *sql.DB
	key      string
}

func NewPostgresStore(dsn string, key string) (Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Таблица документов состояния.
	// Одна строка на ключ, документ перезаписывается целиком
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS app_state (" +
			" key VARCHAR (64) PRIMARY KEY," +
			" doc JSONB NOT NULL," +
			" updated_at TIMESTAMPTZ NOT NULL DEFAULT now()" +
			" );")
	if err != nil {
		db.Close()
		return nil, pgError(err)
	}

	return &postgresStore{
		database: db,
		key:      key,
	}, nil
}

func (store *postgresStore) Load(ctx context.Context) (*model.State, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT doc FROM app_state"+
			" WHERE key = $1",
		store.key)

	var doc []byte
	err := row.Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, pgError(err)
	}
	return Decode(doc)
}

func (store *postgresStore) Save(ctx context.Context, state *model.State) error {
	doc, err := Encode(state)
	if err != nil {
		return err
	}

	_, err = store.database.ExecContext(ctx,
		"INSERT INTO app_state (key, doc, updated_at)"+
			" VALUES ($1, $2, now())"+
			" ON CONFLICT (key) DO UPDATE"+
			" SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at",
		store.key,
		string(doc))
	if err != nil {
		return pgError(err)
	}
	return nil
}

func (store *postgresStore) Close() error {
	return store.database.Close()
}

// pgError добавляет к ошибке код и имя ограничения postgres
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s (%s): %w", pgErr.Code, pgErr.ConstraintName, err)
	}
	return err
}
