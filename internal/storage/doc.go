// Package storage persists the host-side state the planner works over.
//
// State lives in a handful of keyed JSON blobs: tasks, projects, settings,
// free-form notes, user stats, and the last computed plan. Two drivers are
// provided: a dependency-free file backend and an optional SQLite backend
// behind the "sqlite" build tag.
package storage
