// Package component defines the core interfaces for lifecycle-managed
// infrastructure services in bridgekit.
//
// Components represent services that require startup, shutdown, and
// health monitoring. They are registered with a Registry, which starts
// them in registration order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop/Health)
//   - Describable: Startup summary descriptions
package component
