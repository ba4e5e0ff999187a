// Package verify decides whether an inbound webhook delivery is authentic.
//
// The verifier resolves the receiver descriptor, answers provider GET
// handshakes without touching secrets, and then checks either a static
// shared code in the query string or a keyed hash over the raw body.
// Every currently-valid key is tried so secret rotation never drops
// deliveries, and all comparisons run in constant time.
package verify
