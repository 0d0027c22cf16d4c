// Package tasks orchestrates the long-running operations: pushing and pulling
// entities between the SQLite cache and Nostr relays, probing relay health,
// and exporting the whole household to files. Operations report progress over
// channels without blocking when the caller is not listening.
package tasks
