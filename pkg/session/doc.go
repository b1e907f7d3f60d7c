/*
Package session manages uploaded solver datasets.

A Manager stores the raw JSON of each upload in a ports.DatasetStore, keeps
the parsed game trees in a process-local cache, and serializes writes to a
dataset with per-session locks, optionally backed by a distributed locker
when several servers share one store.
*/
package session
