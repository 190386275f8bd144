/*
Package ports defines the driven ports (interfaces) for the Facet engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various storage backends and lock managers.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
