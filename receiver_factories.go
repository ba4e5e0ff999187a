package receivers

import (
	"github.com/goliatone/go-receivers/core"
	builtin "github.com/goliatone/go-receivers/receivers"
	"github.com/goliatone/go-receivers/receivers/devkit"
	"github.com/goliatone/go-receivers/receivers/dropbox"
	"github.com/goliatone/go-receivers/receivers/github"
	"github.com/goliatone/go-receivers/receivers/shopify"
	"github.com/goliatone/go-receivers/receivers/stripe"
)

func GitHubReceiver() core.ReceiverMetadata {
	return github.Metadata()
}

func StripeReceiver() core.ReceiverMetadata {
	return stripe.Metadata()
}

func ShopifyReceiver() core.ReceiverMetadata {
	return shopify.Metadata()
}

func DropboxReceiver() core.ReceiverMetadata {
	return dropbox.Metadata()
}

func DevkitReceiver() core.ReceiverMetadata {
	return devkit.Metadata()
}

// BuiltinReceivers returns every descriptor the kernel registers by default.
func BuiltinReceivers() []core.ReceiverMetadata {
	return builtin.Builtin()
}
