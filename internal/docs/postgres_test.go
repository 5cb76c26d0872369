package docs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreListByOwnerScopesQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`select id, owner_id, original_name, stored_name, uploaded_at\s+from documents where owner_id=`).
		WithArgs("user-a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "original_name", "stored_name", "uploaded_at"}).
			AddRow("d-1", "user-a", "hw1.pdf", "user-a_1_hw1.pdf", now).
			AddRow("d-2", "user-a", "hw2.pdf", "user-a_2_hw2.pdf", now))

	store := NewPGStore(db)
	list, err := store.ListByOwner(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 || list[0].ID != "d-1" {
		t.Fatalf("unexpected result: %v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`select id, owner_id, original_name, stored_name, uploaded_at\s+from documents where id=`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "original_name", "stored_name", "uploaded_at"}))

	store := NewPGStore(db)
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("insert into documents").
		WithArgs("d-1", "user-a", "hw1.pdf", "user-a_1_hw1.pdf", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	err = store.Create(context.Background(), &Document{
		ID:           "d-1",
		OwnerID:      "user-a",
		OriginalName: "hw1.pdf",
		StoredName:   "user-a_1_hw1.pdf",
		UploadedAt:   now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
