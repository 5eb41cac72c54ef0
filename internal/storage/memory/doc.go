// Package memory provides the in-memory dictionary for kvdis.
//
// Store is a single map guarded by a single mutex. It is owned by the
// server process and shared by reference with the snapshot persister, which
// reads and rewrites the same map through View and Update.
//
// Expiration:
//
// Expiration is lazy. Get and Exists treat an entry as absent once its
// instant has passed, but nothing removes it: an expired entry stays in the
// map until DEL, CLEAR or an overwrite by SET/INCR/DECR. There is no
// background sweeper.
//
// Thread Safety:
//
// Every operation holds the mutex for its whole duration, including the
// read-modify-write of Incr and Decr, so concurrent increments never lose
// updates.
package memory
