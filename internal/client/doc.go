// Package client assembles the CareLink client application from its parts:
// configuration, local SQLite storages, the retrying backend adapter, the
// session manager, the offline queue, and the background workers.
//
// Library users construct an [App] and reach the domain services through
// [App.Services]; the carelink command wraps the same wiring in a CLI.
package client
