// Package fixauth implements the FixACareer authentication core: password
// login, TOTP second-factor enrollment and verification for administrators,
// JWT access/refresh issuance with rotation, and password lifecycle flows.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. The Engine holds no mutable in-process state beyond token
// secrets and counters; all credential reads and writes go through the
// injected [AdminStore] and [UserStore].
package fixauth
