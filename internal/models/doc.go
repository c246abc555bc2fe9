// Package models defines the persisted entities of AccountKeeper (accounts,
// tags, settings, operation logs and the AppConfig aggregate) together with
// the derived reporting types used by the backup manager.
//
// All types serialize to the snake_case JSON layout of accounts.json and
// logs.json. Clone methods return fully independent copies; the store hands
// out nothing else.
package models
