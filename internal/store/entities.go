package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrEntityNotFound is returned by the exact-match lookups.
var ErrEntityNotFound = errors.New("reference entity not found")

// FindLocalAuthority matches a label against canonical or normalized names.
func (s *Store) FindLocalAuthority(ctx context.Context, name, normalized string) (*LocalAuthority, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, normalized_name, population, COALESCE(country, '')
		FROM local_authorities
		WHERE name = ? OR normalized_name = ?
		LIMIT 1
	`, name, normalized)

	la, err := scanAuthority(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find local authority %q: %w", name, err)
	}
	return la, nil
}

// ListLocalAuthorities returns all region entities, for fuzzy ranking.
func (s *Store) ListLocalAuthorities(ctx context.Context) ([]LocalAuthority, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, normalized_name, population, COALESCE(country, '')
		FROM local_authorities
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list local authorities: %w", err)
	}
	defer rows.Close()

	var out []LocalAuthority
	for rows.Next() {
		la, err := scanAuthority(rows)
		if err != nil {
			return nil, fmt.Errorf("list local authorities: %w", err)
		}
		out = append(out, *la)
	}
	return out, rows.Err()
}

// InsertLocalAuthority inserts a new region entity (resolver stub path)
// and returns its generated ID.
func (s *Store) InsertLocalAuthority(ctx context.Context, la LocalAuthority) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO local_authorities (code, name, normalized_name, population, country)
		VALUES (?, ?, ?, ?, ?)
	`, la.Code, la.Name, la.NormalizedName, la.Population, nullable(la.Country))
	if err != nil {
		return 0, fmt.Errorf("insert local authority %q: %w", la.Name, err)
	}
	return res.LastInsertId()
}

// UpsertLocalAuthority is the seed path: keyed on code, attributes are
// refreshed on conflict. Ingestion never deletes entities; seed updates
// are the only mutation after creation.
func (s *Store) UpsertLocalAuthority(ctx context.Context, la LocalAuthority) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_authorities (code, name, normalized_name, population, country)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			population = excluded.population,
			country = excluded.country
	`, la.Code, la.Name, la.NormalizedName, la.Population, nullable(la.Country))
	if err != nil {
		return fmt.Errorf("upsert local authority %q: %w", la.Code, err)
	}
	return nil
}

// FindNationality matches a label against canonical or normalized names.
func (s *Store) FindNationality(ctx context.Context, name, normalized string) (*Nationality, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, iso_code, name, normalized_name
		FROM nationalities
		WHERE name = ? OR normalized_name = ?
		LIMIT 1
	`, name, normalized)

	var n Nationality
	err := row.Scan(&n.ID, &n.ISOCode, &n.Name, &n.NormalizedName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find nationality %q: %w", name, err)
	}
	return &n, nil
}

// InsertNationality inserts a stub nationality and returns its ID.
func (s *Store) InsertNationality(ctx context.Context, n Nationality) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO nationalities (iso_code, name, normalized_name)
		VALUES (?, ?, ?)
	`, n.ISOCode, n.Name, n.NormalizedName)
	if err != nil {
		return 0, fmt.Errorf("insert nationality %q: %w", n.Name, err)
	}
	return res.LastInsertId()
}

// UpsertNationality is the seed path, keyed on ISO code.
func (s *Store) UpsertNationality(ctx context.Context, n Nationality) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nationalities (iso_code, name, normalized_name)
		VALUES (?, ?, ?)
		ON CONFLICT(iso_code) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name
	`, n.ISOCode, n.Name, n.NormalizedName)
	if err != nil {
		return fmt.Errorf("upsert nationality %q: %w", n.ISOCode, err)
	}
	return nil
}

func scanAuthority(row rowScanner) (*LocalAuthority, error) {
	var la LocalAuthority
	var population sql.NullInt64
	err := row.Scan(&la.ID, &la.Code, &la.Name, &la.NormalizedName, &population, &la.Country)
	if err != nil {
		return nil, err
	}
	if population.Valid {
		la.Population = &population.Int64
	}
	return &la, nil
}
