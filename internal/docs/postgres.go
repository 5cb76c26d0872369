package docs

import (
	"context"
	"database/sql"
	"errors"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, d *Document) error {
	_, err := s.db.ExecContext(ctx,
		`insert into documents(id, owner_id, original_name, stored_name, uploaded_at)
		 values($1,$2,$3,$4,$5)`,
		d.ID, d.OwnerID, d.OriginalName, d.StoredName, d.UploadedAt,
	)
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, owner_id, original_name, stored_name, uploaded_at
		 from documents where id=$1`, id)
	var d Document
	if err := row.Scan(&d.ID, &d.OwnerID, &d.OriginalName, &d.StoredName, &d.UploadedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByOwner scopes the query to the owner in SQL; there is no unscoped
// listing path.
func (s *PGStore) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, owner_id, original_name, stored_name, uploaded_at
		 from documents where owner_id=$1 order by uploaded_at asc`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.OriginalName, &d.StoredName, &d.UploadedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
