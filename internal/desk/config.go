package desk

import (
	"github.com/zappabad/stockwire/internal/market"
	marketservice "github.com/zappabad/stockwire/internal/market/service"
	newsservice "github.com/zappabad/stockwire/internal/news/service"
)

// Config holds configuration for the desk.
type Config struct {
	// Instruments are registered at startup together with their history.
	Instruments []market.Record
	// MarketConfig is the configuration for the market service.
	MarketConfig marketservice.Config
	// NewsConfig is the configuration for the news service.
	NewsConfig newsservice.Config
}

// DefaultConfig returns a Config with reasonable defaults and no instruments.
func DefaultConfig() Config {
	return Config{
		MarketConfig: marketservice.DefaultConfig(),
		NewsConfig:   newsservice.DefaultConfig(),
	}
}
