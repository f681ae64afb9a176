package documents

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. Rows are scoped by (app_id, user_id).
type PGRepo struct {
	DB *sql.DB
}

const pgColumns = `id, name, mime_type, original_locator, digital_copy_text, category, size_bytes, created_at`

// Create inserts a new document; created_at comes from the server clock.
func (r *PGRepo) Create(ctx context.Context, ns Namespace, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (
    id,
    app_id,
    user_id,
    name,
    mime_type,
    original_locator,
    digital_copy_text,
    category,
    size_bytes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`

	doc.ID = uuid.NewString()
	err := r.DB.QueryRowContext(
		ctx,
		query,
		doc.ID,
		ns.AppID,
		ns.UserID,
		doc.Name,
		doc.MimeType,
		doc.OriginalLocator,
		doc.DigitalCopyText,
		doc.Category,
		doc.SizeBytes,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// List lists documents ordered newest-first.
func (r *PGRepo) List(ctx context.Context, ns Namespace) ([]Document, error) {
	const query = `
SELECT ` + pgColumns + `
FROM documents
WHERE app_id = $1 AND user_id = $2
ORDER BY created_at DESC NULLS LAST, id DESC`

	rows, err := r.DB.QueryContext(ctx, query, ns.AppID, ns.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Get fetches a document by id.
func (r *PGRepo) Get(ctx context.Context, ns Namespace, id string) (Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	const query = `
SELECT ` + pgColumns + `
FROM documents
WHERE app_id = $1 AND user_id = $2 AND id = $3
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, ns.AppID, ns.UserID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes a document by id.
func (r *PGRepo) Delete(ctx context.Context, ns Namespace, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	const query = `DELETE FROM documents WHERE app_id = $1 AND user_id = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, ns.AppID, ns.UserID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var locator sql.NullString
	var text sql.NullString
	var category sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.MimeType,
		&locator,
		&text,
		&category,
		&doc.SizeBytes,
		&createdAt,
	); err != nil {
		return Document{}, err
	}
	if locator.Valid {
		doc.OriginalLocator = locator.String
	}
	if text.Valid {
		doc.DigitalCopyText = text.String
	}
	doc.Category = CategoryOther
	if category.Valid {
		doc.Category = category.String
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
