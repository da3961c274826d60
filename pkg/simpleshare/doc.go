// Package simpleshare provides an ephemeral content-sharing store: short
// links, shared files and text pastes with optional expiration, optional
// password protection and access counting.
//
// Metadata lives in a flat key-value namespace (KVStore) as JSON records
// addressed by prefixed keys; file and text payloads live in a separate
// BlobStore. The two stores are independent systems with no shared
// transaction; the service tolerates one succeeding while the other fails
// and resolves metadata-present/payload-absent states to not-found.
//
// Expiration is enforced lazily on every read (an expired record is cleaned
// up and reported as expired) and actively by the admin package's cleanup
// sweep.
package simpleshare
