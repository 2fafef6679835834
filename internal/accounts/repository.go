package accounts

import (
	"context"

	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/dbx"
)

// Repository persists one PIN credential per patient code.
type Repository interface {
	// Create stores cred. It returns common.ErrorAlreadyExists if the code is taken.
	Create(ctx context.Context, cred *cryptox.PinCredential) error
	// GetByCode returns common.ErrorNotFound if no credential exists.
	GetByCode(ctx context.Context, patientCode string) (*cryptox.PinCredential, error)
}

// RepositoryFactory binds a Repository to a connection or transaction.
type RepositoryFactory func(db dbx.DBTX) Repository
