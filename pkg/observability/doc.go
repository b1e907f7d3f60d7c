/*
Package observability exposes Prometheus metrics for the explorer.

Navigation lifecycle events are counted through domain.LifecycleHooks, and
the HTTP server records per-route request counts and latencies through a
middleware.
*/
package observability
