package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/cmgshare/internal/bundle"
	"github.com/dmitrijs2005/cmgshare/internal/flagx"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseCommand parses the command's own flags out of args; global
// configuration flags are left to the config package.
func parseCommand(fs *flag.FlagSet, args []string) error {
	if err := flagx.ParseDeclared(fs, args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func requireFlag(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s: -%s is required", errUsage, fs.Name(), name)
	}
	return nil
}

// patientCode returns the -code value, prompting for it when the flag was
// omitted.
func (a *App) patientCode(fs *flag.FlagSet, code string) (string, error) {
	if code == "" {
		v, err := GetSimpleText(a.reader, "Patient code", a.out)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		code = v
	}
	if err := requireFlag(fs, "code", code); err != nil {
		return "", err
	}
	if err := bundle.ValidatePatientCode(code); err != nil {
		return "", err
	}
	return code, nil
}
