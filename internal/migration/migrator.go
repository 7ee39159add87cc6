package migration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"migrator/internal/metrics"
	"migrator/internal/schema"
	"migrator/internal/storage"
)

// Migrator applies the units of a Registrar to one database.
type Migrator struct {
	db     storage.DB
	reg    Registrar
	ledger ledger
	log    *zap.Logger
	now    func() time.Time
	locker Locker
	job    string
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Migrator) {
		if l != nil {
			m.log = l
		}
	}
}

// WithLedgerTable overrides the ledger table name.
func WithLedgerTable(name string) Option {
	return func(m *Migrator) {
		if name != "" {
			m.ledger.table = name
		}
	}
}

// WithClock sets the source of applied_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLocker makes every run hold l for the ledger table's key.
func WithLocker(l Locker) Option {
	return func(m *Migrator) { m.locker = l }
}

// WithJob sets the job label attached to metrics.
func WithJob(job string) Option {
	return func(m *Migrator) {
		if job != "" {
			m.job = job
		}
	}
}

// New returns a Migrator for db and the units of reg.
func New(db storage.DB, reg Registrar, opts ...Option) *Migrator {
	m := &Migrator{
		db:     db,
		reg:    reg,
		ledger: ledger{table: DefaultLedgerTable, grammar: db.Grammar()},
		log:    zap.NewNop(),
		now:    time.Now,
		job:    "migrate",
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With(
		zap.String("ledger", m.ledger.table),
		zap.String("dialect", m.ledger.grammar.Name()),
	)
	return m
}

// LedgerTable returns the name of the ledger table.
func (m *Migrator) LedgerTable() string { return m.ledger.table }

// Result summarises one run. IDs appear in execution order.
type Result struct {
	Direction  Direction
	Applied    []string
	RolledBack []string
	Skipped    []string
}

// UnitStatus is the ledger state of one registered unit.
type UnitStatus struct {
	ID        string
	Applied   bool
	AppliedAt time.Time
}

// EnsureLedger creates the ledger table when it is missing. Errors wrap
// ErrLedgerBootstrap.
func (m *Migrator) EnsureLedger(ctx context.Context) error {
	created, err := m.ledger.ensure(ctx, m.db)
	if err != nil {
		return err
	}
	if created {
		m.log.Info("ledger created")
	}
	return nil
}

// Migrate runs every pending unit forward, or reverts every applied unit
// backward. The first failure stops the run and is returned as a
// *UnitError; units completed before it stay applied (or reverted).
func (m *Migrator) Migrate(ctx context.Context, dir Direction) (Result, error) {
	if dir != Forward && dir != Backward {
		return Result{}, fmt.Errorf("migrate: unknown %s", dir)
	}
	return m.run(ctx, dir, 0)
}

// Rollback reverts the most recent steps applied units, newest first.
// steps <= 0 reverts all of them.
func (m *Migrator) Rollback(ctx context.Context, steps int) (Result, error) {
	return m.run(ctx, Backward, steps)
}

// Status reports every registered unit and whether the ledger records it.
// A missing ledger table means nothing has been applied; Status never
// creates it.
func (m *Migrator) Status(ctx context.Context) ([]UnitStatus, error) {
	applied, err := m.readLedger(ctx)
	if err != nil {
		return nil, err
	}
	units := m.reg.Units()
	out := make([]UnitStatus, 0, len(units))
	for _, u := range units {
		at, ok := applied[u.ID]
		out = append(out, UnitStatus{ID: u.ID, Applied: ok, AppliedAt: at})
	}
	return out, nil
}

// Pending returns the registered units that are not recorded in the ledger,
// in the order Migrate would apply them.
func (m *Migrator) Pending(ctx context.Context) ([]Unit, error) {
	applied, err := m.readLedger(ctx)
	if err != nil {
		return nil, err
	}
	var out []Unit
	for _, u := range m.reg.Units() {
		if _, ok := applied[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Migrator) readLedger(ctx context.Context) (map[string]time.Time, error) {
	ok, err := m.db.TableExists(ctx, m.ledger.table)
	if err != nil {
		return nil, fmt.Errorf("table exists %s: %w", m.ledger.table, err)
	}
	if !ok {
		return map[string]time.Time{}, nil
	}
	return m.ledger.applied(ctx, m.db)
}

func (m *Migrator) run(ctx context.Context, dir Direction, steps int) (res Result, err error) {
	res.Direction = dir

	if m.locker != nil {
		release, err := m.locker.Acquire(ctx, m.ledger.table)
		if err != nil {
			return res, fmt.Errorf("acquire migration lock: %w", err)
		}
		defer release()
	}

	if err := m.EnsureLedger(ctx); err != nil {
		return res, err
	}
	applied, err := m.ledger.applied(ctx, m.db)
	if err != nil {
		return res, err
	}

	units := m.reg.Units()
	start := time.Now()
	defer func() {
		metrics.RecordUnits(m.job, metrics.KindApplied, int64(len(res.Applied)))
		metrics.RecordUnits(m.job, metrics.KindRolledBack, int64(len(res.RolledBack)))
		metrics.RecordUnits(m.job, metrics.KindSkipped, int64(len(res.Skipped)))
		m.log.Info("migration run finished",
			zap.Stringer("direction", dir),
			zap.Int("applied", len(res.Applied)),
			zap.Int("rolled_back", len(res.RolledBack)),
			zap.Int("skipped", len(res.Skipped)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}()

	if dir == Forward {
		for _, u := range units {
			if _, ok := applied[u.ID]; ok {
				res.Skipped = append(res.Skipped, u.ID)
				continue
			}
			if err := m.step(ctx, u, Forward); err != nil {
				return res, err
			}
			res.Applied = append(res.Applied, u.ID)
		}
		return res, nil
	}

	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if _, ok := applied[u.ID]; !ok {
			continue
		}
		if steps > 0 && len(res.RolledBack) == steps {
			break
		}
		if err := m.step(ctx, u, Backward); err != nil {
			return res, err
		}
		res.RolledBack = append(res.RolledBack, u.ID)
	}
	return res, nil
}

// step runs one unit in dir together with its ledger write. On dialects
// with transactional DDL both share one transaction; elsewhere the ledger
// is written only after the unit succeeded.
func (m *Migrator) step(ctx context.Context, u Unit, dir Direction) (err error) {
	if err := ctx.Err(); err != nil {
		return &UnitError{ID: u.ID, Direction: dir, Err: err}
	}

	fn := u.Up
	if dir == Backward {
		fn = u.Down
	}
	if fn == nil {
		return &UnitError{ID: u.ID, Direction: dir, Err: ErrIrreversible}
	}

	log := m.log.With(zap.String("unit", u.ID), zap.Stringer("direction", dir))
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		metrics.RecordStep(m.job, u.ID, dir.String(), err, elapsed)
		if err != nil {
			log.Error("migration failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return
		}
		log.Info("migrated", zap.Duration("elapsed", elapsed))
	}()

	body := func(conn storage.Connection) error {
		if err := fn(ctx, schema.New(conn, m.db.Grammar(), log)); err != nil {
			return err
		}
		if dir == Forward {
			return m.ledger.record(ctx, conn, u.ID, m.now().UTC().Truncate(time.Second))
		}
		return m.ledger.remove(ctx, conn, u.ID)
	}

	if m.db.Grammar().TransactionalDDL() {
		err = m.db.InTx(ctx, body)
	} else {
		err = body(m.db)
	}
	if err != nil {
		return &UnitError{ID: u.ID, Direction: dir, Err: err}
	}
	return nil
}
