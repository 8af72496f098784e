package event

type Type string

const (
	MessageStoredType       Type = "MESSAGE_STORED"
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	SinkEvictedType         Type = "SINK_EVICTED"
)

// Event is a technical observability event. It never reaches connected
// clients; the telemetry worker drains these into handlers.
type Event struct {
	Type    Type
	Payload any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type SinkEvicted struct {
	Session string
}
