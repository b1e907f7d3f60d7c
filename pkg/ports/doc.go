/*
Package ports defines the interfaces between the explorer core and its
adapters.

# Key Interfaces

  - NodeService: resolves nodes by address, by action replay, and serves the
    bootstrap snapshot (HTTP client or in-process).
  - DatasetStore: persists uploaded solver trees on the server side.
  - DistributedLocker: serializes access to a dataset across replicas.
*/
package ports
