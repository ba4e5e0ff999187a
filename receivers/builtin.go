// Package receivers gathers the built-in receiver descriptors.
package receivers

import (
	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/receivers/devkit"
	"github.com/goliatone/go-receivers/receivers/dropbox"
	"github.com/goliatone/go-receivers/receivers/github"
	"github.com/goliatone/go-receivers/receivers/shopify"
	"github.com/goliatone/go-receivers/receivers/stripe"
)

// Builtin returns the descriptors shipped with the module, in registration
// order. Callers register them selectively or wholesale; registration fails
// on duplicates so the slice is always a fresh copy.
func Builtin() []core.ReceiverMetadata {
	return []core.ReceiverMetadata{
		github.Metadata(),
		stripe.Metadata(),
		shopify.Metadata(),
		dropbox.Metadata(),
		devkit.Metadata(),
	}
}
