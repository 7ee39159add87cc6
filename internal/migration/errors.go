package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrLedgerBootstrap means the ledger table could not be checked or
	// created. Nothing else runs after it.
	ErrLedgerBootstrap = errors.New("ledger bootstrap failed")

	// ErrIrreversible is returned when a unit without Down is reverted.
	ErrIrreversible = errors.New("migration unit is irreversible")

	// ErrDuplicateUnit is returned when two units share an ID.
	ErrDuplicateUnit = errors.New("duplicate migration unit")

	// ErrInvalidUnit is returned for units with an empty ID or no Up.
	ErrInvalidUnit = errors.New("invalid migration unit")

	// ErrLedgerCorrupt is returned when a ledger row cannot be read back.
	ErrLedgerCorrupt = errors.New("ledger row is malformed")
)

// UnitError carries the unit and direction that failed.
type UnitError struct {
	ID        string
	Direction Direction
	Err       error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("migration %s (%s): %v", e.ID, e.Direction, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Is matches against the wrapped error.
func (e *UnitError) Is(target error) bool { return errors.Is(e.Err, target) }
