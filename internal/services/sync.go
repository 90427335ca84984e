package services

import (
	"time"
)

// SyncBuffer absorbs client/server clock skew when comparing timestamps.
const SyncBuffer = time.Second

// ProfileChanged decides whether a polling client needs the full profile:
// true when the server-side state moved past the client's last-known
// timestamp by more than the skew buffer. A "changed" answer is coarse —
// the client overwrites its local state wholesale.
func ProfileChanged(serverLastModified, clientSince time.Time) bool {
	return serverLastModified.After(clientSince.Add(SyncBuffer))
}
