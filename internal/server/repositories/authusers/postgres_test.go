package authusers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.AuthUser) *sqlmock.Rows {
	var approvedBy any
	if u.ApprovedBy != "" {
		approvedBy = u.ApprovedBy
	}
	return sqlmock.NewRows([]string{
		"id", "email", "email_lower", "nome", "role", "status",
		"password_hash", "created_at", "updated_at", "approved_at", "approved_by",
	}).AddRow(u.ID, u.Email, u.EmailLower, u.Nome, string(u.Role), string(u.Status),
		u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.ApprovedAt, approvedBy)
}

func sampleUser() *models.AuthUser {
	now := time.Now().UTC()
	return &models.AuthUser{
		ID:           "u-1",
		Email:        "medico@hospital.com",
		EmailLower:   "medico@hospital.com",
		Nome:         "Medico",
		Role:         models.RoleMedico,
		Status:       models.StatusPendingApproval,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgresCreatePendingUser_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+auth_users\s*\(id,\s*email,\s*email_lower,\s*nome,\s*role,\s*status,\s*password_hash,\s*created_at,\s*updated_at\)\s*VALUES.*ON\s+CONFLICT\s*\(email_lower\)\s*DO\s+NOTHING\s*$`

	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "medico@hospital.com", "medico@hospital.com", "Medico",
			string(models.RoleMedico), string(models.StatusPendingApproval), "hash",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.CreatePendingUser(context.Background(), "Medico@Hospital.com", "hash")
	if err != nil {
		t.Fatalf("CreatePendingUser error: %v", err)
	}
	if got.EmailLower != "medico@hospital.com" || got.Status != models.StatusPendingApproval {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreatePendingUser_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+auth_users.*ON\s+CONFLICT\s*\(email_lower\)\s*DO\s+NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.CreatePendingUser(context.Background(), "medico@hospital.com", "hash")
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestPostgresCreatePendingUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+auth_users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.CreatePendingUser(context.Background(), "medico@hospital.com", "hash")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+auth_users\s+WHERE\s+email_lower\s*=\s*\$1\s*$`).
		WithArgs("medico@hospital.com").
		WillReturnRows(userRows(u))

	got, err := repo.FindByEmail(context.Background(), "  MEDICO@hospital.com ")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "medico@hospital.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestPostgresFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+auth_users\s+WHERE\s+email_lower`).
		WithArgs("ghost@hospital.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@hospital.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestPostgresListPending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "nome", "role", "status", "created_at"}).
		AddRow("u-2", "b@hospital.com", "B", string(models.RoleMedico), string(models.StatusPendingApproval), now).
		AddRow("u-1", "a@hospital.com", "A", string(models.RoleMedico), string(models.StatusPendingApproval), now.Add(-time.Hour))

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*email,\s*nome,\s*role,\s*status,\s*created_at\s+FROM\s+auth_users\s+WHERE\s+status\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs(string(models.StatusPendingApproval)).
		WillReturnRows(rows)

	got, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u-2" || got[1].ID != "u-1" {
		t.Fatalf("unexpected summaries: %+v", got)
	}
}

func TestPostgresApprove_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.Status = models.StatusApproved
	now := time.Now().UTC()
	u.ApprovedAt = &now
	u.ApprovedBy = "admin-1"

	mock.ExpectQuery(`(?s)UPDATE\s+auth_users\s+SET\s+status\s*=\s*\$2,\s*approved_at\s*=\s*\$3,\s*approved_by\s*=\s*\$4,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs("u-1", string(models.StatusApproved), sqlmock.AnyArg(), "admin-1").
		WillReturnRows(userRows(u))

	got, err := repo.Approve(context.Background(), "u-1", "admin-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if got.Status != models.StatusApproved || got.ApprovedBy != "admin-1" || got.ApprovedAt == nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestPostgresApprove_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)UPDATE\s+auth_users\s+SET\s+status`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Approve(context.Background(), "ghost", "admin-1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestPostgresReject_ClearsApprovedAt(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.Status = models.StatusRejected
	u.ApprovedBy = "admin-1"

	mock.ExpectQuery(`(?s)UPDATE\s+auth_users\s+SET\s+status\s*=\s*\$2,\s*approved_at\s*=\s*NULL,\s*approved_by\s*=\s*\$3,\s*updated_at\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs("u-1", string(models.StatusRejected), "admin-1", sqlmock.AnyArg()).
		WillReturnRows(userRows(u))

	got, err := repo.Reject(context.Background(), "u-1", "admin-1")
	if err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if got.Status != models.StatusRejected || got.ApprovedAt != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestPostgresUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+auth_users\s+SET\s+password_hash\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1`

	mock.ExpectExec(q).
		WithArgs("u-1", "new-hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdatePassword(context.Background(), "u-1", "new-hash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}

	mock.ExpectExec(q).
		WithArgs("ghost", "new-hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdatePassword(context.Background(), "ghost", "new-hash"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
