package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var pgNS = Namespace{AppID: "app-1", UserID: "user-1"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateReturnsServerTimestamp(t *testing.T) {
	repo, mock := newMockRepo(t)
	createdAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(
			sqlmock.AnyArg(), // id
			"app-1",
			"user-1",
			"labs.pdf",
			"application/pdf",
			"artifacts/app-1/users/user-1/original_documents/k.pdf",
			"text",
			"Lab Results",
			int64(10),
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	doc, err := repo.Create(context.Background(), pgNS, Document{
		Name:            "labs.pdf",
		MimeType:        "application/pdf",
		OriginalLocator: "artifacts/app-1/users/user-1/original_documents/k.pdf",
		DigitalCopyText: "text",
		Category:        "Lab Results",
		SizeBytes:       10,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(doc.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", doc.ID)
	}
	if !doc.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %v, got %v", createdAt, doc.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListScansNullableColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "name", "mime_type", "original_locator", "digital_copy_text", "category", "size_bytes", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE app_id = \\$1 AND user_id = \\$2 ORDER BY created_at DESC").
		WithArgs("app-1", "user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("id-2", "b.png", "image/png", "loc-b", "text", "Radiology", int64(5), newer).
			AddRow("id-1", "a.txt", "text/plain", nil, nil, nil, int64(3), nil))

	docs, err := repo.List(context.Background(), pgNS)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "id-2" || docs[0].Category != "Radiology" || !docs[0].CreatedAt.Equal(newer) {
		t.Fatalf("unexpected first doc: %+v", docs[0])
	}
	if docs[1].Category != CategoryOther || docs[1].OriginalLocator != "" || !docs[1].CreatedAt.IsZero() {
		t.Fatalf("unexpected null handling: %+v", docs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.NewString()
	cols := []string{"id", "name", "mime_type", "original_locator", "digital_copy_text", "category", "size_bytes", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE app_id = \\$1 AND user_id = \\$2 AND id = \\$3").
		WithArgs("app-1", "user-1", id).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id, "a.pdf", "application/pdf", "loc", "t", "Insurance", int64(1), time.Now()))

	doc, err := repo.Get(context.Background(), pgNS, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.ID != id || doc.Category != "Insurance" {
		t.Fatalf("unexpected doc: %+v", doc)
	}

	missing := uuid.NewString()
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("app-1", "user-1", missing).
		WillReturnRows(sqlmock.NewRows(cols))
	if _, err := repo.Get(context.Background(), pgNS, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.Get(context.Background(), pgNS, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.NewString()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("app-1", "user-1", id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), pgNS, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("app-1", "user-1", id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), pgNS, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("app-1", "user-1", id).
		WillReturnError(errors.New("connection reset"))
	if err := repo.Delete(context.Background(), pgNS, id); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected driver error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
