// Package storage writes the collected posts to disk.
//
// The output is always one JSON array. WritePosts is called once per run and
// replaces the file atomically.
package storage
