package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *cryptox.PinCredential) error {
	query :=
		`INSERT INTO pin_credentials (patient_code, salt, pepper_version, pin_hash)
		 VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, cred.PatientCode, cred.Salt, cred.PepperVersion, cred.Hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, patientCode string) (*cryptox.PinCredential, error) {
	query :=
		`SELECT patient_code, salt, pepper_version, pin_hash FROM pin_credentials
		 WHERE patient_code = $1`

	cred := &cryptox.PinCredential{}
	err := r.db.QueryRowContext(ctx, query, patientCode).
		Scan(&cred.PatientCode, &cred.Salt, &cred.PepperVersion, &cred.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}
