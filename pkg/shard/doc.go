// Package shard splits objects into fixed size pieces, replicates the
// piece set for fault tolerance, stores pieces in a content addressed
// store and reconstructs verified objects from their manifest.
//
// The reconstruction algorithm fetches primary pieces concurrently,
// verifies each against its manifest checksum, falls back to replicas
// on mismatch or fetch failure, and finally verifies the whole object
// checksum. It either returns verified bytes or fails with a specific,
// inspectable error: corrupted data is never returned silently.
package shard
