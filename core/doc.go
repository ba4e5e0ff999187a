// Package core contains canonical receiver domain contracts and entities.
// Lower-level packages (lookup, verification, transport adapters) must
// depend on this package; core must not depend on receiver-specific or
// storage-specific adapters.
package core
