package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"migrator/internal/ddl"
)

// Recorder is a DB that executes nothing. It records every statement it is
// handed so callers can print the DDL a migration would run ("pretend"
// mode). Queries return no rows and no table ever exists.
type Recorder struct {
	grammar ddl.Grammar

	mu    sync.Mutex
	stmts []string
}

var _ DB = (*Recorder)(nil)

// NewRecorder returns a Recorder compiling with g.
func NewRecorder(g ddl.Grammar) *Recorder {
	return &Recorder{grammar: g}
}

func (r *Recorder) Grammar() ddl.Grammar { return r.grammar }

func (r *Recorder) Exec(_ context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	r.record(stmt)
	return nil
}

func (r *Recorder) Query(context.Context, string, ...any) ([]Row, error) {
	return nil, nil
}

func (r *Recorder) Insert(_ context.Context, table string, fields map[string]any) error {
	stmt, args, err := BuildInsert(r.grammar, QuestionPlaceholder, table, fields)
	if err != nil {
		return err
	}
	r.record(fmt.Sprintf("%s -- %v", stmt, args))
	return nil
}

func (r *Recorder) Delete(_ context.Context, table, column string, value any) error {
	r.record(fmt.Sprintf("%s -- [%v]", BuildDelete(r.grammar, QuestionPlaceholder, table, column), value))
	return nil
}

func (r *Recorder) TableExists(context.Context, string) (bool, error) { return false, nil }

// InTx runs fn against the recorder itself; there is nothing to roll back.
func (r *Recorder) InTx(_ context.Context, fn func(Connection) error) error { return fn(r) }

func (r *Recorder) Close() error { return nil }

// Statements returns a copy of the recorded statements in order.
func (r *Recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.stmts))
	copy(out, r.stmts)
	return out
}

// Reset discards the recorded statements.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.stmts = nil
	r.mu.Unlock()
}

func (r *Recorder) record(stmt string) {
	r.mu.Lock()
	r.stmts = append(r.stmts, stmt)
	r.mu.Unlock()
}
