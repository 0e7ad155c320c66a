package db

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The pool and an open transaction are the only two engines Get ever hands
// out; a signature drift in Engine breaks this file before any repository.
var (
	_ Engine = (*pgxpool.Pool)(nil)
	_ Engine = (pgx.Tx)(nil)

	_ EngineFactory = (*ContextManager)(nil)
	_ Transactioner = (*ContextManager)(nil)
)
