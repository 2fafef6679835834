package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/bundle"
	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
	"github.com/dmitrijs2005/cmgshare/internal/share"
)

// Import reads a container from a local file or, failing that, from the
// configured store, asks for the key and prints the bundle.
func (a *App) Import(ctx context.Context, args []string) error {
	flags := newFlagSet("import")
	in := flags.String("in", "", "package file or object name")
	if err := parseCommand(flags, args); err != nil {
		return err
	}
	if err := requireFlag(flags, "in", *in); err != nil {
		return err
	}

	data, err := a.readContainer(ctx, *in)
	if err != nil {
		return err
	}

	token, err := GetSecret(a.reader, "Key: ", a.out)
	if err != nil {
		return err
	}
	key, err := cryptox.ParseKey(token)
	if err != nil {
		return err
	}
	defer key.Wipe()

	pipeline := share.NewImportService(a.logger)

	plaintext, err := pipeline.Import(ctx, data, key)
	if err != nil {
		return err
	}

	env, err := bundle.Open(plaintext, a.now())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(env.Data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Valid until: %s\n", env.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintln(a.out, string(out))
	return nil
}

func (a *App) readContainer(ctx context.Context, in string) ([]byte, error) {
	data, err := os.ReadFile(in)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	store, err := a.containerStore(ctx)
	if err != nil {
		return nil, err
	}
	data, err = store.Get(ctx, in)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: package %s not found", common.ErrInvalidInput, in)
	}
	return data, err
}
