package sheetsync

import (
	"context"

	"github.com/agentstation/sheetsync/internal/store/postgres"
	"github.com/agentstation/sheetsync/internal/store/sqlite"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/store"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

func validDriver(driver string) bool {
	switch driver {
	case DriverSQLite, DriverPostgres, DriverNone, "":
		return true
	default:
		return false
	}
}

// OpenStore opens a read-only store. The none driver, or an empty driver,
// returns a nil store and no error.
func OpenStore(ctx context.Context, driver, dsn string) (store.Store, error) {
	switch driver {
	case DriverSQLite:
		s, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverNone, "":
		return nil, nil
	default:
		return nil, &errors.ValidationError{
			Field:   "store.driver",
			Value:   driver,
			Message: "must be one of sqlite, postgres, none",
		}
	}
}

// openRunStore returns the store for one import and a func releasing it.
// Failure to open is soft: the run continues with no store.
func (c *client) openRunStore(ctx context.Context) (store.Store, func(), error) {
	if s := c.injectedStore(); s != nil {
		return s, func() {}, nil
	}

	s, err := OpenStore(ctx, c.options.storeDriver, c.options.storeDSN)
	if err != nil {
		if !errors.IsSoft(err) {
			err = errors.NewStoreError(c.options.storeDriver, "open", err)
		}
		return nil, func() {}, err
	}
	if s == nil {
		return nil, func() {}, nil
	}
	return s, func() { _ = s.Close() }, nil
}
