package vision

import (
	"fmt"

	"ledgerlens/internal/config"
	"ledgerlens/internal/port"
)

// ProviderFactory is a function that creates a VisionInvoker from a provider config.
type ProviderFactory func(cfg *config.VisionProviderConfig) (port.VisionInvoker, error)

// registry of vision provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a vision provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewInvoker creates a VisionInvoker from a provider config using the registered factory.
func NewInvoker(cfg *config.VisionProviderConfig) (port.VisionInvoker, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
