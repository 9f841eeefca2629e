package service

import (
	"context"
	"log/slog"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/collector"
	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/privacy"
	"github.com/syssam/sqlmodel/schema"
)

// Option configures a Service.
type Option func(*config)

type config struct {
	registry *schema.Registry
	log      *slog.Logger
	policy   privacy.QueryMutationRule
	cache    sqlmodel.Cache
	ttl      time.Duration
}

// WithRegistry sets the registry New looks the model table up in.
// The default is schema.DefaultRegistry.
func WithRegistry(r *schema.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger sets the logger of the service. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithPolicy sets the privacy policy evaluated before every collector runs.
func WithPolicy(p privacy.QueryMutationRule) Option {
	return func(c *config) { c.policy = p }
}

// WithCache enables caching of count, get and find results. Every
// successful remove or modify drops the cached results of its table.
func WithCache(cache sqlmodel.Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL sets the lifetime of cached results. Zero keeps them until
// they are invalidated.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// Service is the data-access surface of a model type. Every method builds
// a collector and runs it against the executor of the service.
type Service[T any] struct {
	table      *schema.Table[T]
	ex         dialect.ExecQuerier
	cfg        config
	group      *singleflight.Group
	gens       *generations
	invalidate sqlmodel.Cache // cache dropped by mutations when reads bypass it
}

// New returns the service of the model type T, which must be registered.
//
//	users, err := service.New[User](drv)
//	u, err := users.FindByOnlyPrimaryKey(ctx, 1)
func New[T any](ex dialect.ExecQuerier, opts ...Option) (*Service[T], error) {
	cfg := newConfig(opts)
	t, err := schema.LookupIn[T](cfg.registry)
	if err != nil {
		return nil, err
	}
	return &Service[T]{table: t, ex: ex, cfg: cfg, group: &singleflight.Group{}, gens: generationsOf(cfg.cache)}, nil
}

// NewWithTable returns the service of the given table.
func NewWithTable[T any](t *schema.Table[T], ex dialect.ExecQuerier, opts ...Option) *Service[T] {
	cfg := newConfig(opts)
	return &Service[T]{table: t, ex: ex, cfg: cfg, group: &singleflight.Group{}, gens: generationsOf(cfg.cache)}
}

func newConfig(opts []Option) config {
	cfg := config{registry: schema.DefaultRegistry, log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Table returns the model table of the service.
func (s *Service[T]) Table() *schema.Table[T] { return s.table }

// Using returns a copy of the service that runs its collectors on ex, such
// as a dialect.Tx. Cached results are neither read nor written inside it.
// Its mutations invalidate the table, and again after the commit when the
// transaction implements dialect.CommitHooker.
//
//	tx, err := drv.Tx(ctx)
//	...
//	n, err := users.Using(tx).RemoveByOnlyPrimaryKeys(ctx, ids)
func (s *Service[T]) Using(ex dialect.ExecQuerier) *Service[T] {
	c := *s
	c.ex = ex
	if _, ok := ex.(dialect.Tx); ok {
		c.cfg.cache = nil
		c.invalidate = s.cfg.cache
	}
	return &c
}

// Collect runs c with the executor, policy and cache of s.
func Collect[T, R any](ctx context.Context, s *Service[T], c *collector.Collector[R]) (R, error) {
	var zero R
	op := c.Operation()
	if s.cfg.policy != nil {
		if err := privacy.Eval(ctx, s.cfg.policy, op); err != nil {
			return zero, sqlmodel.NewPrivacyError(op.Table, string(op.Intent), err)
		}
	}
	if s.cfg.log.Enabled(ctx, slog.LevelDebug) {
		query, args, _ := c.Query(dialect.Of(s.ex))
		s.cfg.log.DebugContext(ctx, "collect",
			"id", op.ID,
			"name", op.Name,
			"intent", string(op.Intent),
			"table", op.Table,
			"query", query,
			"args", args,
		)
	}
	if op.Intent.IsMutation() {
		res, err := c.Collect(ctx, s.ex)
		if err == nil {
			s.drop(ctx, op.Table)
			s.dropOnCommit(ctx, op.Table)
		}
		return res, err
	}
	if s.cfg.cache == nil {
		return c.Collect(ctx, s.ex)
	}
	return c.CollectVia(ctx, s.ex, func(run func() (R, error)) (R, error) {
		return cached(ctx, s, c, run)
	})
}

// cached serves a read from the cache, or runs it once for all concurrent
// callers with the same statement and stores the result. A result is only
// stored when no mutation of the table happened while it was read.
func cached[T, R any](ctx context.Context, s *Service[T], c *collector.Collector[R], run func() (R, error)) (R, error) {
	var zero R
	op := c.Operation()
	query, args, err := c.Query(dialect.Of(s.ex))
	if err != nil {
		return zero, err
	}
	key := sqlmodel.CacheKey{Table: op.Table, Operation: op.Name, Query: query, Args: args}.String()
	switch b, err := s.cfg.cache.Get(ctx, key); {
	case err != nil:
		s.cfg.log.WarnContext(ctx, "cache get failed", "table", op.Table, "error", err)
	case b != nil:
		var res R
		err := msgpack.Unmarshal(b, &res)
		if err == nil {
			return res, nil
		}
		s.cfg.log.WarnContext(ctx, "cache decode failed", "table", op.Table, "error", err)
	}
	gen := s.gens.of(op.Table)
	g := gen.Load()
	var (
		mine R
		ran  bool
	)
	v, err, _ := s.group.Do(key+"#"+strconv.FormatUint(g, 10), func() (any, error) {
		res, err := run()
		if err != nil {
			return nil, err
		}
		mine, ran = res, true
		b, err := msgpack.Marshal(res)
		if err != nil {
			s.cfg.log.WarnContext(ctx, "cache encode failed", "table", op.Table, "error", err)
			return nil, nil
		}
		if gen.Load() != g {
			return b, nil
		}
		if err := s.cfg.cache.Set(ctx, key, b, s.cfg.ttl); err != nil {
			s.cfg.log.WarnContext(ctx, "cache set failed", "table", op.Table, "error", err)
		} else if gen.Load() != g {
			s.forget(ctx, op.Table, key)
		}
		return b, nil
	})
	switch {
	case err != nil:
		return zero, err
	case ran:
		return mine, nil
	}
	// Every caller decodes its own copy of the shared result.
	b, _ := v.([]byte)
	if b == nil {
		return run()
	}
	var res R
	if err := msgpack.Unmarshal(b, &res); err != nil {
		s.cfg.log.WarnContext(ctx, "cache decode failed", "table", op.Table, "error", err)
		return run()
	}
	return res, nil
}

// drop invalidates the cached results of table.
func (s *Service[T]) drop(ctx context.Context, table string) {
	cache := s.cfg.cache
	if cache == nil {
		cache = s.invalidate
	}
	if cache == nil {
		return
	}
	s.gens.of(table).Add(1)
	if err := cache.DeletePrefix(ctx, sqlmodel.TablePrefix(table)); err != nil {
		s.cfg.log.WarnContext(ctx, "cache invalidation failed", "table", table, "error", err)
	}
}

// dropOnCommit invalidates the cached results of table once the transaction
// of the service commits. Reads outside the transaction may have cached the
// uncommitted state of the table in the meantime.
func (s *Service[T]) dropOnCommit(ctx context.Context, table string) {
	if s.invalidate == nil {
		return
	}
	h, ok := s.ex.(dialect.CommitHooker)
	if !ok {
		s.cfg.log.WarnContext(ctx, "transaction does not support commit hooks, cached reads may be stale until invalidated", "table", table)
		return
	}
	ctx = context.WithoutCancel(ctx)
	h.OnCommit(func() { s.drop(ctx, table) })
}

// forget removes a stored result that raced with a mutation of table.
func (s *Service[T]) forget(ctx context.Context, table, key string) {
	if err := s.cfg.cache.Delete(ctx, key); err != nil {
		s.cfg.log.WarnContext(ctx, "cache invalidation failed", "table", table, "error", err)
	}
}

// generations counts the mutations of each table, so that a read started
// before a mutation does not store its result after the invalidation.
type generations struct {
	m sync.Map // table name to *atomic.Uint64
}

func (g *generations) of(table string) *atomic.Uint64 {
	if v, ok := g.m.Load(table); ok {
		return v.(*atomic.Uint64)
	}
	v, _ := g.m.LoadOrStore(table, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// cacheGenerations holds the generations shared by the services of a cache.
var cacheGenerations sync.Map

func generationsOf(cache sqlmodel.Cache) *generations {
	if cache == nil || reflect.ValueOf(cache).Kind() != reflect.Pointer {
		return &generations{}
	}
	v, _ := cacheGenerations.LoadOrStore(cache, &generations{})
	return v.(*generations)
}
