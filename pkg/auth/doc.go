// Package auth stores API bearer tokens.
//
// A Manager walks its stores in order: the system keyring when one is
// reachable, an AES-GCM encrypted file in the config directory, and the
// GEOSCRAPER_BEARER_TOKEN environment variable (read-only).
//
//	manager, err := auth.NewManager("")
//	cred, err := manager.Resolve("")
package auth
