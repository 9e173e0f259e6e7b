// internal/services/locks.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// vehicleLocker serializes mutations per vehicle. Create, Approve and
// Return each hold the target vehicle's lock across their read-check-write
// sequence so two concurrent requests cannot both pass the conflict or
// status check.
type vehicleLocker struct {
	mtx   sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newVehicleLocker() *vehicleLocker {
	return &vehicleLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (vl *vehicleLocker) lock(vehicleID uuid.UUID) func() {
	vl.mtx.Lock()
	m, exists := vl.locks[vehicleID]
	if !exists {
		m = &sync.Mutex{}
		vl.locks[vehicleID] = m
	}
	vl.mtx.Unlock()

	m.Lock()
	return m.Unlock
}
