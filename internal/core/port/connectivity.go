package port

// ConnectivityPort exposes the current network state. Callers re-check it on every operation.
type ConnectivityPort interface {
	IsOffline() bool
}
