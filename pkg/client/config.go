package client

import "time"

// Config tunes the connection manager.
type Config struct {
	// URL is the WebSocket endpoint, e.g. "ws://localhost:8080/ws".
	URL string

	// QueueSize bounds the outbound event channel. Send drops when full.
	QueueSize int

	// ReconnectLimit is the number of consecutive transport failures after
	// which the manager gives up and fires the force-logout hook.
	ReconnectLimit int

	// ReconnectDelay is the base wait between attempts; attempt n waits
	// n times this delay.
	ReconnectDelay time.Duration

	// DialTimeout bounds the WebSocket handshake.
	DialTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// MaxMessageSize caps inbound frames in bytes.
	MaxMessageSize int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:      256,
		ReconnectLimit: 3,
		ReconnectDelay: 2 * time.Second,
		DialTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 1 << 20,
	}
}

// withDefaults fills zero fields so a partially specified config behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.ReconnectLimit <= 0 {
		c.ReconnectLimit = d.ReconnectLimit
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	return c
}
