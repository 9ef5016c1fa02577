package service

// Config sizes the news service buffers.
type Config struct {
	// TapeCapacity bounds how many published items the tape remembers.
	TapeCapacity int
	// DispatchBuffer queues items between Publish and the dispatcher goroutine.
	DispatchBuffer int
	// SubscriberBuffer is the capacity of the channel returned by Events.
	SubscriberBuffer int
	// DropSlowSubscriber discards events instead of blocking the dispatcher
	// when the subscriber channel is full. Drops are counted.
	DropSlowSubscriber bool
}

func DefaultConfig() Config {
	return Config{
		TapeCapacity:       100,
		DispatchBuffer:     256,
		SubscriberBuffer:   256,
		DropSlowSubscriber: true,
	}
}
