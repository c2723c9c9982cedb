package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// Info summarizes a stored raster without decoding its data.
type Info struct {
	Name     string
	Width    int
	Height   int
	Complex  bool
	Min, Max float64
}

// Put queues f under name, replacing any raster already stored under it.
// The store keeps its own copy, so f may be modified or released afterwards.
func (s *Store) Put(name string, f *hfield.Field) error {
	if name == "" {
		return fmt.Errorf("put: empty raster name")
	}
	if s.readOnly {
		return fmt.Errorf("put %q: store %s is read-only", name, s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, entry{name: name, f: f.Clone()})
	if len(s.batch) >= s.batchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes any buffered rasters to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked writes buffered rasters in one transaction. Must be called with
// the lock held.
func (s *Store) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO rasters (name, width, height, complex, min, max, data) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.batch {
		data, err := encode(e.f)
		if err != nil {
			return fmt.Errorf("failed to encode raster %q: %w", e.name, err)
		}
		if _, err := stmt.Exec(e.name, e.f.Width, e.f.Height, e.f.IsComplex(), float64(e.f.Min), float64(e.f.Max), data); err != nil {
			return fmt.Errorf("failed to insert raster %q: %w", e.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, e := range s.batch {
		e.f.Release()
	}
	s.batch = s.batch[:0]
	return nil
}

// Get loads the raster stored under name.
func (s *Store) Get(name string) (*hfield.Field, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	var (
		w, h int
		cplx bool
		data []byte
	)
	err := s.db.QueryRow("SELECT width, height, complex, data FROM rasters WHERE name = ?", name).
		Scan(&w, &h, &cplx, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query raster %q: %w", name, err)
	}

	f, err := decode(w, h, cplx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster %q: %w", name, err)
	}
	return f, nil
}

// List returns every stored raster ordered by name.
func (s *Store) List() ([]Info, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT name, width, height, complex, min, max FROM rasters ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query rasters: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var in Info
		if err := rows.Scan(&in.Name, &in.Width, &in.Height, &in.Complex, &in.Min, &in.Max); err != nil {
			return nil, fmt.Errorf("failed to scan raster row: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rasters: %w", err)
	}
	return out, nil
}

// Delete removes the raster stored under name.
func (s *Store) Delete(name string) error {
	if err := s.Flush(); err != nil {
		return err
	}
	res, err := s.db.Exec("DELETE FROM rasters WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete raster %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete raster %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	return nil
}
