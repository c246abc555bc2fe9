// Package store is the authoritative in-memory and on-disk state of
// AccountKeeper.
//
// Store guards the AppConfig aggregate (accounts, groups, tags, settings)
// with a single RWMutex held only for in-memory work. Every mutating call
// is write-through: after releasing the lock it serializes the whole
// aggregate and replaces accounts.json through filex.AtomicWrite. The
// NoSave variants skip that step so a caller can batch N mutations and
// commit them with one Flush.
//
// LogStore is the bounded operation log kept in logs.json with the same
// write protocol.
//
// Every read returns copies; no caller ever holds a reference into the
// aggregate.
package store
