package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
)

// Keygen prints one fresh export key token.
func (a *App) Keygen(ctx context.Context) error {
	key, err := cryptox.GenerateExportKey()
	if err != nil {
		a.logger.Error(ctx, "key generation failed", "error", err)
		return err
	}
	defer key.Wipe()

	fmt.Fprintln(a.out, key.Token())
	return nil
}
