// Package application provides test doubles for the command application interface.
package application

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	var stdout, stderr bytes.Buffer
//	mock := &application.Mock{
//	    ClientFunc: func() (sheetsync.Client, error) {
//	        return sheetsync.New(sheetsync.WithStore(store.NewMemory()))
//	    },
//	    Out: &stdout,
//	    Err: &stderr,
//	}
//	cmd := importcmd.NewCommand(mock)
type Mock struct {
	ClientFunc        func() (sheetsync.Client, error)
	ImportOptionsFunc func() []sync.Option
	LoggerFunc        func() *zerolog.Logger
	OutputFormatFunc  func() string
	VersionFunc       func() string
	CommitFunc        func() string
	DateFunc          func() string
	BuiltByFunc       func() string

	// Out and Err default to io.Discard.
	Out io.Writer
	Err io.Writer
}

// Client returns a client using the mock function, or a default client.
func (m *Mock) Client() (sheetsync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return sheetsync.New()
}

// ImportOptions returns import options using the mock function or nil.
func (m *Mock) ImportOptions() []sync.Option {
	if m.ImportOptionsFunc != nil {
		return m.ImportOptionsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a nop logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Stdout returns Out or io.Discard.
func (m *Mock) Stdout() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return io.Discard
}

// Stderr returns Err or io.Discard.
func (m *Mock) Stderr() io.Writer {
	if m.Err != nil {
		return m.Err
	}
	return io.Discard
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the commit using the mock function or "test".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "test"
}

// Date returns the date using the mock function or "test".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "test"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
