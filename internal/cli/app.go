package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/accounts"
	"github.com/dmitrijs2005/cmgshare/internal/buildinfo"
	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/config"
	"github.com/dmitrijs2005/cmgshare/internal/container"
	"github.com/dmitrijs2005/cmgshare/internal/logging"
	"github.com/dmitrijs2005/cmgshare/internal/share"
	"github.com/dmitrijs2005/cmgshare/internal/storage"
)

// errUsage marks a malformed command line.
var errUsage = errors.New("usage")

const usage = `usage: cmg <command> [flags]

commands:
  register -code C                        register a PIN for patient C
  login    -code C                        verify the PIN
  export   -code C -in bundle.json [-hours 24]
                                          create an encrypted share package
  import   -in F                          open a share package
  keygen                                  print a fresh export key
  version                                 print build information

global flags: -c config.json -d dsn -x algorithm -k file|s3 -o dir -l level ...`

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// NewApp builds the tool around cfg. Dependencies are opened per command,
// so keygen and import work without a credential database.
func NewApp(cfg *config.Config, logger logging.Logger, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		config: cfg,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		now:    time.Now,
	}
}

// Run executes the command in args (os.Args[1:]) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.errOut, usage)
		return 1
	}

	cmd, rest := args[0], args[1:]
	var err error

	switch cmd {
	case "register":
		err = a.Register(ctx, rest)
	case "login":
		err = a.Login(ctx, rest)
	case "export":
		err = a.Export(ctx, rest)
	case "import":
		err = a.Import(ctx, rest)
	case "keygen":
		err = a.Keygen(ctx)
	case "version":
		buildinfo.PrintBuildData(a.out)
		return 0
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(a.errOut, "%v\n\n%s\n", err, usage)
			return 1
		}
		a.logger.Debug(ctx, "command failed", "command", cmd, "error", err)
		fmt.Fprintln(a.errOut, "error: "+common.UserMessage(err))
		return 1
	}
	return 0
}

func (a *App) openAccounts(ctx context.Context) (*accounts.Service, func(), error) {
	ring, err := a.config.PepperRing()
	if err != nil {
		a.logger.Error(ctx, "pepper is not configured", "error", err)
		return nil, nil, err
	}

	a.logger.Debug(ctx, "pepper ring loaded",
		"current_version", ring.Current().Version, "versions", ring.Versions())

	store, err := accounts.OpenStore(ctx, a.config.DatabaseDSN)
	if err != nil {
		a.logger.Error(ctx, "credential store unavailable", "error", err)
		return nil, nil, err
	}

	svc := accounts.NewService(store.DB, store.Repos, ring, a.config.SecretKey,
		a.config.SessionValidityDuration, a.logger)
	return svc, func() { _ = store.Close() }, nil
}

func (a *App) shareService() (*share.Service, error) {
	alg, err := container.ParseAlgorithm(a.config.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	return share.NewService(a.logger, alg)
}

func (a *App) containerStore(ctx context.Context) (storage.ContainerStore, error) {
	return storage.New(ctx, a.config)
}
