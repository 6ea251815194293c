package health

import "sync/atomic"

// ready gates the readiness endpoint. It starts true and is flipped to false
// when graceful shutdown begins, so load balancers drain the instance before
// in-flight requests are cut off.
var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness gate.
func SetReady(v bool) {
	ready.Store(v)
}

// IsReady reports whether the instance accepts new traffic.
func IsReady() bool {
	return ready.Load()
}
