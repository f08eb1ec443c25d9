package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"startosedge/internal/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return NewPGStore(&db.DB{DB: raw}), mock
}

func profileRows(userID, role string, enrolled []string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"user_id", "name", "email", "phone", "college", "degree",
		"graduation_year", "bio", "skills", "github", "linkedin",
		"portfolio", "role", "enrolled_programs", "created_at", "updated_at",
	}).AddRow(
		userID, "Asha Rao", "asha@example.com", "", "IIT Madras", "",
		"", "", pq.Array([]string{}), "", "",
		"", role, pq.Array(enrolled), now, now,
	)
}

func TestPGStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("u1").
		WillReturnRows(profileRows("u1", "admin", []string{"c1"}))

	p, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != "u1" || p.Role != RoleAdmin {
		t.Errorf("unexpected profile: %+v", p)
	}
	if !p.EnrolledIn("c1") {
		t.Errorf("expected enrollment c1, got %v", p.Enrolled)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGStoreGet_UnknownRoleCollapsesToUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("u1").
		WillReturnRows(profileRows("u1", "owner", nil))

	p, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != RoleUser {
		t.Errorf("unrecognized stored role must collapse to user, got %q", p.Role)
	}
}

func TestPGStoreGet_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreSet_UpsertsOnlyPatchedColumns(t *testing.T) {
	store, mock := newMockStore(t)

	name := "Asha Rao"
	college := "IIT Madras"

	mock.ExpectExec(`INSERT INTO profiles \(user_id, name, college\)`).
		WithArgs("u1", name, college).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "u1", Patch{
		Name:    &name,
		College: &college,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPGStoreAddEnrollment_AlreadyEnrolledIsNoop(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE profiles").
		WithArgs("u1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := store.AddEnrollment(context.Background(), "u1", "c1"); err != nil {
		t.Errorf("re-granting must be a no-op, got %v", err)
	}
}

func TestPGStoreAddEnrollment_MissingProfile(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE profiles").
		WithArgs("ghost", "c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := store.AddEnrollment(context.Background(), "ghost", "c1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreList_RoleFilter(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE role").
		WithArgs("admin").
		WillReturnRows(profileRows("a1", "admin", nil))

	out, err := store.List(context.Background(), Query{Role: RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].UserID != "a1" {
		t.Errorf("unexpected listing: %+v", out)
	}
}

func TestPGStoreDelete_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM profiles").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
