// Package prometheus renders engine counters in Prometheus text exposition
// format.
//
// [NewExporter] accepts a [fixauth.Engine] and exposes an [http.Handler]
// that renders every engine counter plus the audit-dispatcher drop count.
// Counter names are prefixed fixauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
