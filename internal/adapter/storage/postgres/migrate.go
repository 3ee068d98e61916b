package postgres

import (
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/langowen/converter/deploy/migrations"
	"github.com/pkg/errors"
)

// Migrate applies the embedded migrations. databaseURL must use the pgx5
// scheme.
func Migrate(databaseURL string) error {
	const op = "storage.postgres.Migrate"

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, op)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Error("Failed to close migrator", "op", op, "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, op)
	}

	return nil
}
