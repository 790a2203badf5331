package reconciler

import (
	"strings"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Mode selects how current rows are matched against existing records.
type Mode string

const (
	// ModeCreate emits a create for every row and never consults history.
	ModeCreate Mode = "create"
	// ModeSync creates new rows, updates known rows and soft-deletes vanished ones.
	ModeSync Mode = "sync"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeCreate || m == ModeSync
}

// ParseMode parses a mode name, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &errors.ValidationError{
			Field:   "mode",
			Value:   s,
			Message: "must be one of create, sync",
		}
	}
	return m, nil
}

// options configures a reconciler.
type options struct {
	mode         Mode
	timelineSync bool
	profile      Profile
	clock        func() utc.Time
	newID        func() string
}

func defaultOptions() *options {
	return &options{
		mode:    ModeCreate,
		profile: DefaultProfile(),
		clock:   utc.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithMode sets the reconciliation mode.
func WithMode(mode Mode) Option {
	return func(o *options) error {
		if !mode.Valid() {
			return &errors.ValidationError{
				Field:   "mode",
				Value:   string(mode),
				Message: "must be one of create, sync",
			}
		}
		o.mode = mode
		return nil
	}
}

// WithTimelineSync lets updates overwrite status, bucket and scheduled date.
func WithTimelineSync(enabled bool) Option {
	return func(o *options) error {
		o.timelineSync = enabled
		return nil
	}
}

// WithProfile sets the project profile.
func WithProfile(p Profile) Option {
	return func(o *options) error {
		if err := p.Validate(); err != nil {
			return err
		}
		o.profile = p
		return nil
	}
}

// WithClock sets the time source used for soft-delete stamps.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}

// WithIDGenerator sets the generator for pre-assigned document ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		if newID == nil {
			return &errors.ValidationError{
				Field:   "id_generator",
				Message: "cannot be nil",
			}
		}
		o.newID = newID
		return nil
	}
}
