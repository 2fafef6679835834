package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/bundle"
	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/storage"
)

// Export logs the patient in, seals the bundle read from -in with an expiry,
// encrypts it under a fresh key and stores the container. The key is printed
// exactly once and never stored.
func (a *App) Export(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	codeFlag := fs.String("code", "", "patient code")
	in := fs.String("in", "", "bundle JSON file")
	hours := fs.Int("hours", int(bundle.DefaultValidity/time.Hour), "validity in hours (1-168)")
	if err := parseCommand(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "in", *in); err != nil {
		return err
	}

	code, err := a.patientCode(fs, *codeFlag)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s", common.ErrInvalidInput, *in)
	}
	var b bundle.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("%w: %s is not a valid bundle", common.ErrInvalidInput, *in)
	}

	pipeline, err := a.shareService()
	if err != nil {
		return err
	}
	store, err := a.containerStore(ctx)
	if err != nil {
		return err
	}

	svc, closeFn, err := a.openAccounts(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	session, err := a.login(ctx, svc, code)
	if err != nil {
		return err
	}
	patient, err := svc.PatientFromToken(session.Token)
	if err != nil {
		return err
	}

	now := a.now()
	sealed, err := bundle.Seal(b, time.Duration(*hours)*time.Hour, now)
	if err != nil {
		return err
	}

	exp, err := pipeline.Export(ctx, sealed)
	common.WipeByteArray(sealed)
	if err != nil {
		return err
	}
	defer exp.Key.Wipe()

	location, err := store.Put(ctx, storage.NewObjectName(patient, now), exp.Container)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "share package stored", "export_id", exp.ID, "patient_code", patient, "location", location)

	fmt.Fprintf(a.out, "Package: %s\n", location)
	fmt.Fprintf(a.out, "Expires: %s\n", now.UTC().Add(time.Duration(*hours)*time.Hour).Format(time.RFC3339))
	fmt.Fprintln(a.out, "Key (shown once, send it separately from the package):")
	fmt.Fprintln(a.out, exp.Key.Token())
	return nil
}
