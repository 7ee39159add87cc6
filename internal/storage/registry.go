package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"migrator/internal/ddl"
)

// ErrUnknownKind is returned when no backend or grammar is registered for a
// requested kind.
var ErrUnknownKind = errors.New("unknown storage kind")

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
	grammars  = map[string]ddl.Grammar{}
)

// Register registers (or replaces) the backend factory for kind. It is
// typically called from backend packages' init functions.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[normalizeKind(kind)] = f
}

// RegisterGrammar registers (or replaces) the DDL grammar for kind.
// Grammars are registered separately from factories so that DDL can be
// compiled for a dialect without opening a connection.
func RegisterGrammar(kind string, g ddl.Grammar) {
	regMu.Lock()
	defer regMu.Unlock()
	grammars[normalizeKind(kind)] = g
}

// Open locates the factory for cfg.Kind and invokes it.
func Open(ctx context.Context, cfg Config) (DB, error) {
	regMu.RLock()
	f, ok := factories[normalizeKind(cfg.Kind)]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownKind, cfg.Kind, strings.Join(Kinds(), ", "))
	}
	return f(ctx, cfg)
}

// GrammarFor returns the grammar registered for kind.
func GrammarFor(kind string) (ddl.Grammar, error) {
	regMu.RLock()
	g, ok := grammars[normalizeKind(kind)]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no grammar for %q", ErrUnknownKind, kind)
	}
	return g, nil
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	return sortedKeys(factories)
}

// GrammarKinds returns the kinds with a registered grammar, sorted.
func GrammarKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	return sortedKeys(grammars)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
