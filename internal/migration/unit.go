// Package migration applies ordered schema migration units to a database and
// records each applied unit in a ledger table, so that running the migrator
// repeatedly applies every unit exactly once.
//
// Units are registered explicitly on a Registry (typically from the init
// function of the package that defines them) and handed to New:
//
//	reg := migration.NewRegistry()
//	reg.MustRegister(migration.Unit{
//		ID: "2024_01_01_000000_create_users",
//		Up: func(ctx context.Context, s *schema.Schema) error {
//			return s.Create(ctx, "users", func(t *ddl.Table) {
//				t.VarChar("username", nil)
//			})
//		},
//		Down: func(ctx context.Context, s *schema.Schema) error {
//			return s.Drop(ctx, "users")
//		},
//	})
//	m := migration.New(db, reg)
//	res, err := m.Migrate(ctx, migration.Forward)
package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"migrator/internal/schema"
)

// Func is the body of one migration direction.
type Func func(ctx context.Context, s *schema.Schema) error

// Unit is one migration: a stable identifier plus its forward and backward
// actions. The ID is what the ledger stores; it must never change once the
// unit has been applied anywhere. Down may be nil for irreversible units.
type Unit struct {
	ID   string
	Up   Func
	Down Func
}

// Direction selects which action of a unit is run.
type Direction int

const (
	// Forward applies pending units (Up).
	Forward Direction = iota
	// Backward reverts applied units (Down) in reverse order.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "up"
	case Backward:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts "up"/"forward" and "down"/"backward".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "forward":
		return Forward, nil
	case "down", "backward":
		return Backward, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Registrar yields the units a Migrator works on, sorted ascending by ID.
type Registrar interface {
	Units() []Unit
}

// Registry is the in-memory Registrar. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	units map[string]Unit
}

var _ Registrar = (*Registry)(nil)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// Register adds units. It fails, registering none of them, when an ID is
// empty or already taken or a unit has no Up action.
func (r *Registry) Register(units ...Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]struct{}, len(units))
	for i := range units {
		id := strings.TrimSpace(units[i].ID)
		if id == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidUnit)
		}
		if units[i].Up == nil {
			return fmt.Errorf("%w: %s has no Up", ErrInvalidUnit, id)
		}
		if _, dup := r.units[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateUnit, id)
		}
		if _, dup := batch[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateUnit, id)
		}
		batch[id] = struct{}{}
	}
	for _, u := range units {
		u.ID = strings.TrimSpace(u.ID)
		r.units[u.ID] = u
	}
	return nil
}

// MustRegister is Register for init-time use; it panics on error.
func (r *Registry) MustRegister(units ...Unit) {
	if err := r.Register(units...); err != nil {
		panic(err)
	}
}

// Units returns the registered units sorted ascending by ID.
func (r *Registry) Units() []Unit {
	r.mu.RLock()
	out := make([]Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}
