/*
Package observability turns editor lifecycle hooks into logs and Prometheus metrics.

Metrics counts history transitions, loads and saves, and tracks stack depths and
snapshot sizes per tab. Hooks builds a domain.LifecycleHooks that records into
Metrics and logs each event; Chain fans one event out to several hook sets.
*/
package observability
