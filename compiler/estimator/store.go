package estimator

//go:generate go tool mockgen -source=store.go -destination=mock/mock_store.go -package=mock

import (
	"math"

	"github.com/brimdata/flowplan/compiler/dag"
)

// Unknown is the size of a port whose data volume cannot be predicted.
var Unknown = math.NaN()

func IsUnknown(size float64) bool {
	return math.IsNaN(size)
}

// Lookup returns the estimated size in bytes of a port, or Unknown.
type Lookup interface {
	Size(port dag.PortID) float64
}

// Store is a Lookup that also accepts estimates.
type Store interface {
	Lookup
	Put(port dag.PortID, size float64)
}

// MemStore is an in-memory Store.  Ports never put are Unknown.
type MemStore map[dag.PortID]float64

var _ Store = MemStore(nil)

func NewMemStore(seed map[dag.PortID]float64) MemStore {
	m := make(MemStore, len(seed))
	for id, size := range seed {
		m[id] = size
	}
	return m
}

func (m MemStore) Size(port dag.PortID) float64 {
	if size, ok := m[port]; ok {
		return size
	}
	return Unknown
}

func (m MemStore) Put(port dag.PortID, size float64) {
	m[port] = size
}

// Sum adds sizes.  If any of them is Unknown the sum is Unknown.
func Sum(sizes ...float64) float64 {
	var total float64
	for _, size := range sizes {
		if IsUnknown(size) {
			return Unknown
		}
		total += size
	}
	return total
}
