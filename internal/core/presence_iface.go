package core

import "github.com/dkeye/Office/internal/domain"

// SnapshotPublisher fans a presence snapshot out to every connected client.
// The registry calls it while holding its write lock, so implementations
// must not block and must not call back into the registry.
type SnapshotPublisher interface {
	Publish(domain.Snapshot)
}
