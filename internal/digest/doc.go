// Package digest derives the content digests used to key cached analyses.
//
// [Primary] is the current scheme: characters outside 7-bit ASCII are dropped
// before hashing, so the key is stable across encodings of the same text.
// [Legacy] hashes the raw UTF-8 bytes and exists only so that entries written
// under the older scheme are still found.
//
// Because [Primary] discards non-ASCII characters, two inputs that differ only
// in those characters share a digest.
package digest
