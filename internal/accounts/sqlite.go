package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository backs the single-user local install.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) Repository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, cred *cryptox.PinCredential) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pin_credentials (patient_code, salt, pepper_version, pin_hash) VALUES (?, ?, ?, ?)`,
		cred.PatientCode, cred.Salt, cred.PepperVersion, cred.Hash)
	if err != nil {
		var sqlErr *sqlite.Error
		if errors.As(err, &sqlErr) && isDuplicateKey(sqlErr) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to create credential[%s]: %w", cred.PatientCode, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByCode(ctx context.Context, patientCode string) (*cryptox.PinCredential, error) {
	cred := &cryptox.PinCredential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT patient_code, salt, pepper_version, pin_hash FROM pin_credentials WHERE patient_code = ?`,
		patientCode).Scan(&cred.PatientCode, &cred.Salt, &cred.PepperVersion, &cred.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", patientCode, err)
	}
	return cred, nil
}

func isDuplicateKey(err *sqlite.Error) bool {
	switch err.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Extended result codes off: fall back to the message.
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}
