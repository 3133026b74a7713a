// Package memswarm is an in-process swarm client with scripted behaviour
//
// Sessions are registered under their key the moment one is known: at join when
// the locator carries an xt=urn:btih: hash, otherwise when metadata is emitted.
// Scripts decide what each identifier eventually emits and after how long; the
// delay runs on an injectable clock so tests can drive it deterministically.
// It backs the resolver tests and the SWARM_DRIVER=memory development mode.
package memswarm
