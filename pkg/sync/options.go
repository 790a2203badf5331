// Package sync provides the options and result of one import run.
package sync

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/sheetsync/internal/matcher"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/emitter"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// Options controls one import run in Client.Import().
type Options struct {
	// Reconciliation control
	Mode         reconciler.Mode // create or sync
	TimelineSync bool            // Let updates overwrite status, bucket and scheduled date
	PriorityOnly bool            // Keep only priority-tier rows on priority sheets

	// Source selection
	SourcePath   string   // Workbook to import
	PrimarySheet string   // Sheet that must exist (empty means none required)
	Sheets       []string // Glob or regex sheet filters (empty means all)

	// Priority filter scope
	PrioritySheets   []string // Sheets the priority filter applies to
	PriorityKeywords []string // Tier keywords, matched as case-insensitive substrings

	// Output control
	OutputPath   string        // Action batch file
	ManifestPath string        // Manifest file
	DryRun       bool          // Stream the batch without writing files
	Timeout      time.Duration // Bound for the store lookup (0 means none)

	// Profile overrides the project strings (nil means the default profile)
	Profile *reconciler.Profile
}

// Apply applies the given options to the import options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default import options.
func Defaults() *Options {
	return &Options{
		Mode:             reconciler.ModeCreate,
		TimelineSync:     false,
		PriorityOnly:     false,
		SourcePath:       constants.DefaultSourceFile,
		PrimarySheet:     "",
		Sheets:           nil,
		PrioritySheets:   []string{"*NanaGarden*"},
		PriorityKeywords: []string{"hero", "signature"},
		OutputPath:       filepath.Join(constants.DefaultOutputDir, constants.DefaultPayloadFile),
		ManifestPath:     filepath.Join(constants.DefaultOutputDir, constants.DefaultManifestFile),
		DryRun:           false,
		Timeout:          constants.StoreQueryTimeout,
		Profile:          nil,
	}
}

// Option is a function that configures import Options.
type Option func(*Options)

// Validate checks if the import options are valid.
func (s *Options) Validate() error {
	if !s.Mode.Valid() {
		return &errors.ValidationError{
			Field:   "Mode",
			Value:   s.Mode,
			Message: "mode must be one of create, sync",
		}
	}

	if strings.TrimSpace(s.SourcePath) == "" {
		return &errors.ValidationError{
			Field:   "SourcePath",
			Value:   s.SourcePath,
			Message: "source workbook is required",
		}
	}

	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}

	if s.OutputPath == "" || s.ManifestPath == "" {
		return &errors.ValidationError{
			Field:   "OutputPath",
			Value:   s.OutputPath,
			Message: "output and manifest paths are required",
		}
	}
	if filepath.Clean(s.OutputPath) == filepath.Clean(s.ManifestPath) {
		return &errors.ValidationError{
			Field:   "ManifestPath",
			Value:   s.ManifestPath,
			Message: fmt.Sprintf("manifest path '%s' collides with the output path", s.ManifestPath),
		}
	}

	if s.PriorityOnly && len(s.PriorityKeywords) == 0 {
		return &errors.ValidationError{
			Field:   "PriorityKeywords",
			Message: "priority filter needs at least one tier keyword",
		}
	}

	if _, err := matcher.NewSet(s.Sheets...); err != nil {
		return errors.WrapValidation("Sheets", err)
	}
	if _, err := matcher.NewSet(s.PrioritySheets...); err != nil {
		return errors.WrapValidation("PrioritySheets", err)
	}

	if s.Profile != nil {
		if err := s.Profile.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ProfileOrDefault returns the configured profile or the default one.
func (s *Options) ProfileOrDefault() reconciler.Profile {
	if s.Profile != nil {
		return *s.Profile
	}
	return reconciler.DefaultProfile()
}

// ReconcilerOptions converts import options to properly typed reconciler options.
func (s *Options) ReconcilerOptions() []reconciler.Option {
	return []reconciler.Option{
		reconciler.WithMode(s.Mode),
		reconciler.WithTimelineSync(s.TimelineSync),
		reconciler.WithProfile(s.ProfileOrDefault()),
	}
}

// EmitOptions converts import options to emitter options. w receives the
// streamed batch and may be nil.
func (s *Options) EmitOptions(w io.Writer) []emitter.Option {
	return []emitter.Option{
		emitter.WithPayloadPath(s.OutputPath),
		emitter.WithManifestPath(s.ManifestPath),
		emitter.WithDryRun(s.DryRun),
		emitter.WithWriter(w),
	}
}

// WithMode sets the reconciliation mode.
func WithMode(mode reconciler.Mode) Option {
	return func(opts *Options) {
		opts.Mode = mode
	}
}

// WithTimelineSync configures timeline propagation on updates.
func WithTimelineSync(enabled bool) Option {
	return func(opts *Options) {
		opts.TimelineSync = enabled
	}
}

// WithPriorityOnly configures the priority tier filter.
func WithPriorityOnly(enabled bool) Option {
	return func(opts *Options) {
		opts.PriorityOnly = enabled
	}
}

// WithSource sets the workbook path.
func WithSource(path string) Option {
	return func(opts *Options) {
		opts.SourcePath = path
	}
}

// WithPrimarySheet requires a sheet to be present.
func WithPrimarySheet(name string) Option {
	return func(opts *Options) {
		opts.PrimarySheet = name
	}
}

// WithSheets restricts the import to matching sheets.
func WithSheets(patterns ...string) Option {
	return func(opts *Options) {
		opts.Sheets = patterns
	}
}

// WithPrioritySheets sets the sheets the priority filter applies to.
func WithPrioritySheets(patterns ...string) Option {
	return func(opts *Options) {
		opts.PrioritySheets = patterns
	}
}

// WithPriorityKeywords sets the tier keywords of the priority filter.
func WithPriorityKeywords(keywords ...string) Option {
	return func(opts *Options) {
		opts.PriorityKeywords = keywords
	}
}

// WithOutputPath configures the action batch file.
func WithOutputPath(path string) Option {
	return func(opts *Options) {
		opts.OutputPath = path
	}
}

// WithManifestPath configures the manifest file.
func WithManifestPath(path string) Option {
	return func(opts *Options) {
		opts.ManifestPath = path
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithTimeout configures the store lookup timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithProfile overrides the project profile.
func WithProfile(p reconciler.Profile) Option {
	return func(opts *Options) {
		opts.Profile = &p
	}
}
