package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/bundle"
	"github.com/dmitrijs2005/cmgshare/internal/common"
)

// Register asks for the patient code when -code is omitted, then for a new
// PIN twice, and stores the credential.
func (a *App) Register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	code := fs.String("code", "", "patient code")
	if err := parseCommand(fs, args); err != nil {
		return err
	}
	patient, err := a.patientCode(fs, *code)
	if err != nil {
		return err
	}

	pin, err := GetSecret(a.reader, "New PIN (4 digits): ", a.out)
	if err != nil {
		return err
	}
	if err := bundle.ValidatePin(pin); err != nil {
		return err
	}
	confirm, err := GetSecret(a.reader, "Repeat PIN: ", a.out)
	if err != nil {
		return err
	}
	if pin != confirm {
		return fmt.Errorf("%w: PINs do not match", common.ErrInvalidInput)
	}

	svc, closeFn, err := a.openAccounts(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Register(ctx, patient, pin); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Patient %s registered\n", patient)
	return nil
}
