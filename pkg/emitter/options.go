package emitter

import (
	"io"
	"path/filepath"

	"github.com/agentstation/sheetsync/pkg/constants"
)

// Options is the configuration for emitting a run's outputs.
type Options struct {
	payloadPath  string
	manifestPath string
	writer       io.Writer
	dryRun       bool
}

// PayloadPath returns where the action batch is written.
func (o *Options) PayloadPath() string {
	return o.payloadPath
}

// ManifestPath returns where the manifest is written.
func (o *Options) ManifestPath() string {
	return o.manifestPath
}

// Writer returns the stream the batch is copied to, nil for none.
func (o *Options) Writer() io.Writer {
	return o.writer
}

// DryRun reports whether files are left untouched.
func (o *Options) DryRun() bool {
	return o.dryRun
}

// Defaults returns the default emit options.
func Defaults() *Options {
	return &Options{
		payloadPath:  filepath.Join(constants.DefaultOutputDir, constants.DefaultPayloadFile),
		manifestPath: filepath.Join(constants.DefaultOutputDir, constants.DefaultManifestFile),
	}
}

// Apply applies the given options to the emit options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option is a function that configures emit options.
type Option func(*Options)

// WithPayloadPath sets the action batch file.
func WithPayloadPath(path string) Option {
	return func(o *Options) {
		if path != "" {
			o.payloadPath = path
		}
	}
}

// WithManifestPath sets the manifest file.
func WithManifestPath(path string) Option {
	return func(o *Options) {
		if path != "" {
			o.manifestPath = path
		}
	}
}

// WithWriter streams the batch to w as well.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

// WithDryRun skips both file writes.
func WithDryRun(enabled bool) Option {
	return func(o *Options) {
		o.dryRun = enabled
	}
}
