// Package sheetsync provides the main entry point for importing a
// multi-sheet workbook into a task and document store.
//
// An import never writes to the store. It reads the workbook, looks up the
// records earlier imports created, and emits an ordered action batch plus a
// manifest for the next run. An external executor applies the batch.
//
// Example usage:
//
//	client, err := sheetsync.New(sheetsync.WithStoreDSN("sqlite", "data/workos.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Import(ctx,
//	    sync.WithMode(reconciler.ModeSync),
//	    sync.WithSource("plan.xlsx"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package sheetsync

import (
	"io"

	"github.com/agentstation/sheetsync/pkg/store"
)

// Client runs imports and workbook inspections.
type Client interface {
	// Importer runs the import pipeline
	Importer

	// Inspector reports how a workbook would be read
	Inspector

	// Hooks provides access to event callback registration
	Hooks

	// Close releases a store the client was given by WithStore.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	// options are the configured options for the client
	options *options

	// hooks fire after each import
	*hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		options: options,
		hooks:   newHooks(),
	}, nil
}

// Close closes the injected store, if any.
func (c *client) Close() error {
	if c.options.store == nil {
		return nil
	}
	return c.options.store.Close()
}

// output returns the stream the action batch is copied to.
func (c *client) output() io.Writer {
	return c.options.output
}

// injectedStore returns the store passed with WithStore.
func (c *client) injectedStore() store.Store {
	return c.options.store
}
