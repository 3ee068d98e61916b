package postgres

import (
	"context"

	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

const currenciesQuery = `
	SELECT code, name, symbol, flag, is_active, sort_order
	FROM currencies
	ORDER BY sort_order ASC`

func (s *Storage) Currencies(ctx context.Context) ([]entities.Currency, error) {
	const op = "storage.postgres.Currencies"

	rows, err := s.db.Query(ctx, currenciesQuery)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	var currencies []entities.Currency
	for rows.Next() {
		var c entities.Currency
		if err = rows.Scan(&c.Code, &c.Name, &c.Symbol, &c.Flag, &c.IsActive, &c.SortOrder); err != nil {
			return nil, errors.Wrap(err, op)
		}
		currencies = append(currencies, c)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return currencies, nil
}
