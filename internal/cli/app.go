package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/accountkeeper/internal/backup"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/config"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/netx"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
	"github.com/dmitrijs2005/accountkeeper/internal/store"
)

// Streams are the standard streams of one invocation.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App holds everything a subcommand needs. It is populated by the root
// command's PersistentPreRunE.
type App struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	inFD   int

	cfg      *config.Config
	log      logging.Logger
	store    *store.Store
	accounts *services.AccountService
	data     *services.DataService
	net      *netx.Supervisor
	registry *prometheus.Registry
}

func newApp(s Streams) *App {
	a := &App{
		out:    s.Out,
		errOut: s.Err,
		in:     bufio.NewReader(s.In),
		inFD:   -1,
	}
	if f, ok := s.In.(*os.File); ok {
		a.inFD = int(f.Fd())
	}
	return a
}

func (a *App) init(ctx context.Context, cfg *config.Config) error {
	l, err := logging.New(a.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = l

	notifier := store.NotifierFunc(func(ctx context.Context, ev models.TokenRefreshedEvent) error {
		l.Debug(ctx, "token refreshed", "account_id", ev.AccountID, "expires_at", ev.ExpiresAt)
		return nil
	})
	st, err := store.Open(ctx, cfg.DataDir,
		store.WithLogger(l),
		store.WithLogRetention(cfg.LogRetention),
		store.WithNotifier(notifier),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = st

	bopts := []backup.Option{backup.WithKeep(cfg.BackupKeep), backup.WithLogger(l)}
	if cfg.Mirror.Enabled {
		mirror, err := backup.NewS3Mirror(ctx, cfg.Mirror)
		if err != nil {
			return err
		}
		bopts = append(bopts, backup.WithMirror(mirror))
	}

	a.accounts = services.NewAccountService(st, l)
	a.data = services.NewDataService(st, backup.NewManager(st, bopts...), l)

	a.registry = prometheus.NewRegistry()
	a.net = netx.NewSupervisor(cfg.HTTP,
		netx.WithLogger(l),
		netx.WithMetrics(netx.NewMetrics(a.registry)),
		netx.WithProxy(cfg.Proxy),
	)
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("account id %q: %w", raw, common.ErrorValidation)
	}
	return id, nil
}

func (a *App) promptPassword(label string) (string, error) {
	return GetPassword(a.in, a.inFD, label, a.errOut)
}
