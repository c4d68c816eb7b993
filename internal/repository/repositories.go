// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
package repository

import (
	"context"

	"github.com/deppfellow/go-posts/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
// Accepting it instead of the pool lets tests run against pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories is a container for all repository instances.
type Repositories struct {
	Post *PostRepository
}

// NewRepositories wires every repository to the shared connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Post: NewPostRepository(s.DB.Pool),
	}
}
