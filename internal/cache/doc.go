// Package cache stores analysis results on disk, one JSON file per key.
//
// A key is an item identifier plus a content digest from package digest; the
// file is named "<item>_<digest>.json" and holds only the serialized payload.
// Lookups try the primary digest first and fall back to the legacy digest so
// results written by earlier versions keep being served. Unreadable or
// malformed entries are logged and treated as misses.
//
// Writes go through a temporary file and a rename while holding a lock on the
// cache directory, so readers never see a partial entry. A small in-memory LRU
// sits in front of the directory for repeated lookups within one process.
//
// Entries are never invalidated by the cache itself; the cache CLI command
// offers Stats and Clear for manual cleanup.
package cache
