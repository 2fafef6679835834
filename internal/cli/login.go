package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/accounts"
)

// Login checks the PIN for -code (prompted when omitted) and reports the
// session lifetime.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	code := fs.String("code", "", "patient code")
	if err := parseCommand(fs, args); err != nil {
		return err
	}
	patient, err := a.patientCode(fs, *code)
	if err != nil {
		return err
	}

	svc, closeFn, err := a.openAccounts(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	session, err := a.login(ctx, svc, patient)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s until %s\n", session.PatientCode, session.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) login(ctx context.Context, svc *accounts.Service, code string) (*accounts.Session, error) {
	pin, err := GetSecret(a.reader, "PIN: ", a.out)
	if err != nil {
		return nil, err
	}
	return svc.Login(ctx, code, pin)
}
