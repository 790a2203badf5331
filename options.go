package sheetsync

import (
	"io"
	"strings"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// options holds client configuration.
type options struct {
	store       store.Store
	storeDriver string
	storeDSN    string
	workbook    *workbook.Workbook
	output      io.Writer
	clock       func() utc.Time
	newID       func() string
}

func defaults() *options {
	return &options{
		clock: utc.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client instance.
type Option func(*options) error

// WithStore uses an already opened store for every import. The client
// closes it on Close.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithStoreDSN opens the store per import with the named driver: sqlite,
// postgres or none.
func WithStoreDSN(driver, dsn string) Option {
	return func(o *options) error {
		d := strings.ToLower(strings.TrimSpace(driver))
		if !validDriver(d) {
			return &errors.ValidationError{
				Field:   "store.driver",
				Value:   driver,
				Message: "must be one of sqlite, postgres, none",
			}
		}
		o.storeDriver = d
		o.storeDSN = dsn
		return nil
	}
}

// WithWorkbook imports an already loaded workbook instead of opening the
// source path.
func WithWorkbook(wb *workbook.Workbook) Option {
	return func(o *options) error {
		o.workbook = wb
		return nil
	}
}

// WithOutput streams every emitted action batch to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) error {
		o.output = w
		return nil
	}
}

// WithClock sets the time source for run timestamps.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithIDGenerator sets the generator for run ids and new control document ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		if newID == nil {
			return &errors.ValidationError{Field: "id_generator", Message: "cannot be nil"}
		}
		o.newID = newID
		return nil
	}
}
