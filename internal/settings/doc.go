// Package settings is the client's in-memory configuration model.
//
// # Concurrency
//
// Settings is safe for concurrent use. The mode has its own lock, owned by
// the instance, and held across the censorship lookup so the signal is asked
// at most once. The proxy set has a second lock covering add, remove,
// replace and snapshot. Closed-beta flags are swapped through an atomic
// pointer and copied on every read and write. Everything else sits behind a
// read/write mutex. Every slice handed out is a copy.
//
// # Mode
//
//	none -> give | get   first IsGetMode call, censored networks get
//	give <-> get         SetGetMode
//
// # Views
//
// Runtime and Persistent are the two serialized views. Both are plain reads;
// neither resolves the mode. Runtime-only flags (trusted peers, keychain,
// UI, bind to localhost, ...) appear in neither.
package settings
