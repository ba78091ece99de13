package handlers

import (
	"strings"

	"github.com/uptrace/bun"

	"github.com/dmpolyakov/racingclub/cache"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db     *bun.DB
	JWTKey []byte
	Cache  *cache.Cache
}

// New creates a Handler with the given database connection, JWT signing key
// and optional response cache (nil disables caching).
func New(db *bun.DB, jwtKey []byte, c *cache.Cache) *Handler {
	return &Handler{db: db, JWTKey: jwtKey, Cache: c}
}

// isDuplicateKey reports whether err is a storage uniqueness violation.
// Covers PostgreSQL and the SQLite database the tests run on.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint failed")
}
