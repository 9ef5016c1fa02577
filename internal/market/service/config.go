package service

// Config sizes the market service price event stream.
type Config struct {
	PriceEventBuffer int
	// DropSlowSubscriber discards price events when the channel is full.
	// When false a slow subscriber stalls every mutation.
	DropSlowSubscriber bool
}

func DefaultConfig() Config {
	return Config{
		PriceEventBuffer:   1024,
		DropSlowSubscriber: true,
	}
}
