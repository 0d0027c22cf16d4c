// Package services provides the network clients hearth depends on: Nostr
// relays for entity storage, Blossom servers for file attachments, and
// LNURL-pay for the donation flow. Every client takes a context on blocking
// calls and degrades gracefully when individual servers are down.
package services
