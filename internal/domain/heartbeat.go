package domain

// Heartbeat is the tri-state liveness signal reported by the backend.
// The status endpoint and the live feed both encode it as bool|null, so
// absence is a first-class state rather than a default.
type Heartbeat int

const (
	HeartbeatUnknown Heartbeat = iota
	HeartbeatActive
	HeartbeatInactive
)

func HeartbeatFromBoolPtr(b *bool) Heartbeat {
	switch {
	case b == nil:
		return HeartbeatUnknown
	case *b:
		return HeartbeatActive
	default:
		return HeartbeatInactive
	}
}

func (h Heartbeat) String() string {
	switch h {
	case HeartbeatActive:
		return "active"
	case HeartbeatInactive:
		return "inactive"
	default:
		return "unknown"
	}
}
