// Package inbound dispatches verified webhook deliveries to per-receiver
// handlers, suppressing duplicate deliveries through a claim store.
package inbound
