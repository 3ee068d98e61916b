package catalog

import (
	"context"
	"log/slog"

	"github.com/langowen/converter/internal/entities"
)

type Storage interface {
	Currencies(ctx context.Context) ([]entities.Currency, error)
}

type Catalog struct {
	storage Storage
}

// New accepts a nil storage, in which case only the built-in list is served.
func New(storage Storage) *Catalog {
	return &Catalog{storage: storage}
}

// Currencies never fails: a storage error or an empty table falls back to
// the built-in list.
func (c *Catalog) Currencies(ctx context.Context) []entities.Currency {
	const op = "catalog.Currencies"

	if c.storage == nil {
		return Builtin()
	}

	currencies, err := c.storage.Currencies(ctx)
	if err != nil {
		slog.Error("Failed to fetch currencies from DB", "op", op, "error", err)
		return Builtin()
	}

	if len(currencies) == 0 {
		slog.Debug("Currency table is empty, using built-in list", "op", op)
		return Builtin()
	}

	return currencies
}

// Find resolves a code against the catalog first and the built-in list second.
func (c *Catalog) Find(ctx context.Context, code string) (entities.Currency, bool) {
	for _, cur := range c.Currencies(ctx) {
		if cur.Code == code {
			return cur, true
		}
	}
	return Lookup(code)
}
