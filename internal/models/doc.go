// Package models defines the data model for the home management client.
//
// Entities are flat records serialized as JSON into Nostr event content and
// mirrored into the local cache in internal/repositories. Validation is
// form-level: required names, MM/DD/YYYY dates, non-negative costs. Each
// entity type maps to one parameterized-replaceable Nostr event kind with the
// entity ID in the `d` tag.
package models
