package cache

// KeySnapshot returns the key holding the unload snapshot of a cart.
func KeySnapshot(snapshotKey string) string {
	return "cart:snapshot:" + snapshotKey
}

// KeySnapshotLock returns the lock key guarding snapshot updates.
func KeySnapshotLock(snapshotKey string) string {
	return "lock:cart:snapshot:" + snapshotKey
}
