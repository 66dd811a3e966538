// Package primitives defines the declarative graph configuration: the YAML
// document a motion graph is loaded from, its validation, and its
// conversion into a *motionchart.Graph.
//
// Validation invariants:
//   - the idle node exists and has type idle
//   - every edge target and action step names a declared node
//   - every node is reachable from the idle node or from an action
package primitives
