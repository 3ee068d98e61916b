package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/langowen/converter/deploy/config"
	"github.com/langowen/converter/internal/adapter/storage/redis"
	"github.com/langowen/converter/internal/adapter/storage/sqlite"
	"github.com/langowen/converter/internal/board"
	"github.com/langowen/converter/internal/catalog"
	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/internal/rate_provider/adapter/api_client/ingest_endpoint"
	"github.com/langowen/converter/internal/rate_provider/provider"
	"github.com/pkg/errors"
	redisPack "github.com/redis/go-redis/v9"
	"golang.org/x/term"
)

var ErrInvalidAmount = errors.New("amount must be a non-negative number")

type Options struct {
	Amount      string
	From        string
	To          []string
	Watch       bool
	Interactive bool
}

type App struct {
	cfg *config.Config
	in  io.Reader
	out io.Writer
}

// NewApp reads keys from in in interactive mode; in may be nil otherwise.
func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		cfg: cfg,
		in:  in,
		out: out,
	}
}

// Run prints the converted board once, keeps re-printing it after every
// refresh in watch mode, or hands the board to the keyboard in interactive
// mode, until ctx is done.
func (a *App) Run(ctx context.Context, opts Options) error {
	const op = "app.Run"

	a.initLogger()

	if err := validateAmount(opts.Amount); err != nil {
		return errors.Wrapf(err, "%s: invalid amount %q", op, opts.Amount)
	}

	cache := a.initCache(ctx)
	if cache != nil {
		defer cache.Close()
	}

	var db *database
	if a.cfg.Provider.UseDB {
		db = newDatabase(a.cfg.Storage.DSN(), a.cfg.Storage.Timeout)
		defer db.Close()
	}

	p := a.initProvider(db, cache)

	var storage catalog.Storage
	if db != nil {
		storage = db
	}
	cat := catalog.New(storage)

	currencies := a.currencies(ctx, cat, opts)
	b := board.New(p.Convert, currencies, opts.Amount)

	switch {
	case opts.Interactive:
		return a.interactive(ctx, p, b, cat)
	case opts.Watch:
		return a.watch(ctx, p, b)
	}

	state := p.Initialize(ctx)
	b.Recalculate()
	Render(a.out, b, state, time.Now())

	return nil
}

func (a *App) watch(ctx context.Context, p *provider.Provider, b *board.Board) error {
	states := p.Subscribe()

	refreshDone := p.Start(ctx)
	listenDone := a.listen(ctx, p)

	clearScreen := isTerminal(a.out)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	state := p.Current()
	for {
		select {
		case state = <-states:
			b.Recalculate()
		case <-ticker.C:
		case <-ctx.Done():
			<-refreshDone
			<-listenDone
			return nil
		}

		if clearScreen {
			fmt.Fprint(a.out, "\033[H\033[2J")
		}
		Render(a.out, b, state, time.Now())
	}
}

// interactive edits the board from single keystrokes read from a.in, which
// is switched to raw mode when it is a terminal.
func (a *App) interactive(ctx context.Context, p *provider.Provider, b *board.Board, cat *catalog.Catalog) error {
	const op = "app.interactive"

	if a.in == nil {
		return errors.Errorf("%s: no input", op)
	}

	out := a.out
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		old, err := term.MakeRaw(fd)
		if err != nil {
			return errors.Wrap(err, op)
		}
		defer func() { _ = term.Restore(fd, old) }()

		// raw mode drops output post-processing; the terminal writer puts
		// carriage returns back
		out = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{a.in, a.out}, "")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states := p.Subscribe()
	refreshDone := p.Start(ctx)
	listenDone := a.listen(ctx, p)
	keys := readKeys(ctx, a.in)

	s := newSession(p, b, cat)
	stop := func() {
		cancel()
		s.wait()
		<-refreshDone
		<-listenDone
	}

	clearScreen := isTerminal(a.out)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	state := p.Current()
	b.Recalculate()
	for {
		if clearScreen {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		s.draw(out, state, time.Now())

		select {
		case state = <-states:
			b.Recalculate()
			if s.message == refreshing {
				s.message = ""
			}
		case key, ok := <-keys:
			if !ok || !s.handle(ctx, key) {
				stop()
				return nil
			}
		case <-ticker.C:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

// readKeys forwards bytes from in until it fails or ctx is done.
func readKeys(ctx context.Context, in io.Reader) <-chan byte {
	keys := make(chan byte)

	go func() {
		defer close(keys)

		r := bufio.NewReader(in)
		for {
			key, err := r.ReadByte()
			if err != nil {
				if err != io.EOF {
					slog.Warn("Failed to read key", "error", err)
				}
				return
			}

			select {
			case keys <- key:
			case <-ctx.Done():
				return
			}
		}
	}()

	return keys
}

// listen subscribes to ingestion announcements when redis is configured.
func (a *App) listen(ctx context.Context, p *provider.Provider) <-chan struct{} {
	done := make(chan struct{})

	if a.cfg.Redis.Host == "" {
		close(done)
		return done
	}

	rdStorage, err := redis.InitStorage(ctx, &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}, a.cfg.Redis.TTL)
	if err != nil {
		slog.Warn("Redis unavailable, relying on timer refresh only", "error", err)
		close(done)
		return done
	}

	updates, err := rdStorage.Updates(ctx)
	if err != nil {
		slog.Warn("Failed to subscribe to rate updates", "error", err)
		_ = rdStorage.Close()
		close(done)
		return done
	}

	listenDone := p.Listen(ctx, updates)

	go func() {
		<-listenDone
		_ = rdStorage.Close()
		close(done)
	}()

	return done
}

func (a *App) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     slog.LevelWarn,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

// initCache returns nil when the cache file cannot be opened; the provider
// then runs without offline support.
func (a *App) initCache(ctx context.Context) *sqlite.Storage {
	cache, err := sqlite.InitStorage(ctx, a.cfg.Provider.CachePath, a.cfg.Provider.CacheKey)
	if err != nil {
		slog.Error("Failed to open rate cache", "path", a.cfg.Provider.CachePath, "error", err)
		return nil
	}

	return cache
}

func (a *App) initProvider(db *database, cache *sqlite.Storage) *provider.Provider {
	var sources []provider.Source
	if db != nil {
		sources = append(sources, db)
	}
	if a.cfg.Provider.EndpointURL != "" {
		client := ingest_endpoint.NewHTTPClient(&http.Client{Timeout: a.cfg.Provider.Timeout}, a.cfg.Provider.EndpointURL, a.cfg.Provider.APIKey)
		sources = append(sources, provider.NewSource("api", client.Fetch))
	}

	var local provider.Cache
	if cache != nil {
		local = cache
	}

	return provider.New(sources, local, provider.Options{
		RefreshInterval: a.cfg.Provider.RefreshInterval,
		Timeout:         a.cfg.Provider.Timeout,
	})
}

// currencies resolves the board rows: From first, then To, without
// duplicates. Codes missing from the catalog are shown by code only.
func (a *App) currencies(ctx context.Context, cat *catalog.Catalog, opts Options) []entities.Currency {
	known := cat.Currencies(ctx)

	byCode := make(map[string]entities.Currency, len(known))
	for _, c := range known {
		byCode[c.Code] = c
	}

	codes := opts.To
	if len(codes) == 0 {
		codes = a.cfg.Split("Currencies")
	}
	codes = append([]string{opts.From}, codes...)

	seen := make(map[string]bool, len(codes))
	out := make([]entities.Currency, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		c, ok := byCode[code]
		if !ok {
			c = entities.Currency{Code: code, Name: code}
		}
		out = append(out, c)
	}

	return out
}

func validateAmount(amount string) error {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
