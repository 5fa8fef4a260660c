package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"phonestore/internal/domain"
)

type PhoneRepo struct{ db *sqlx.DB }

func NewPhoneRepo(db *sqlx.DB) *PhoneRepo { return &PhoneRepo{db: db} }

type phoneRow struct {
	ID          string  `db:"id"`
	Brand       string  `db:"brand"`
	Model       string  `db:"model"`
	Price       float64 `db:"price"`
	Image       string  `db:"image"`
	ColorsJSON  string  `db:"colors_json"`
	StorageJSON string  `db:"storage_json"`
}

func (r phoneRow) toPhone() (domain.Phone, error) {
	m := domain.PhoneModel{ID: r.ID, Brand: r.Brand, Model: r.Model, Price: r.Price, Image: r.Image}
	if err := json.Unmarshal([]byte(r.ColorsJSON), &m.Colors); err != nil {
		return domain.Phone{}, fmt.Errorf("phone %s colors: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.StorageJSON), &m.StorageOptions); err != nil {
		return domain.Phone{}, fmt.Errorf("phone %s storage: %w", r.ID, err)
	}
	return domain.FromModel(m), nil
}

// Phones lists active phones ordered by brand and model.
func (r *PhoneRepo) Phones(ctx context.Context) ([]domain.Phone, error) {
	var rows []phoneRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT id, brand, model, price, image, colors_json, storage_json
	  FROM phones
	  WHERE active = 1
	  ORDER BY brand, model
	`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Phone, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPhone()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Phone returns domain.ErrPhoneNotFound for unknown or inactive ids.
func (r *PhoneRepo) Phone(ctx context.Context, id string) (domain.Phone, error) {
	var row phoneRow
	err := r.db.GetContext(ctx, &row, `
	  SELECT id, brand, model, price, image, colors_json, storage_json
	  FROM phones
	  WHERE id = ? AND active = 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Phone{}, domain.ErrPhoneNotFound
	}
	if err != nil {
		return domain.Phone{}, err
	}
	return row.toPhone()
}

// Upsert inserts or replaces a catalog entry.
func (r *PhoneRepo) Upsert(ctx context.Context, m domain.PhoneModel) error {
	colors, err := json.Marshal(nonNil(m.Colors))
	if err != nil {
		return err
	}
	storage, err := json.Marshal(nonNil(m.StorageOptions))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO phones(id, brand, model, price, image, colors_json, storage_json, active, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  brand = excluded.brand, model = excluded.model, price = excluded.price,
		  image = excluded.image, colors_json = excluded.colors_json,
		  storage_json = excluded.storage_json, active = 1, updated_at = CURRENT_TIMESTAMP
	`, m.ID, m.Brand, m.Model, m.Price, m.Image, string(colors), string(storage))
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
