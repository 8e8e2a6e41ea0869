package amqp

import (
	"fmt"
	"time"
)

// ConnectionConfig holds configuration for the RabbitMQ-backed coordinator client
type ConnectionConfig struct {
	URL          string        // full AMQP URL; overrides the individual fields when set
	Username     string
	Password     string
	Host         string
	Port         int
	VHost        string
	RequestQueue string        // queue the coordinator consumes requests from
	RPCTimeout   time.Duration // timeout for ingest and truncate exchanges
}

// DefaultConnectionConfig returns a configuration for a local RabbitMQ
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Username: "guest",
		Password: "guest",
		Host:     "localhost",
		Port:     5672,
		VHost:    "/",
	}
}

// BuildURL constructs an AMQP URL from the configuration
func (c *ConnectionConfig) BuildURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.Username, c.Password, c.Host, c.Port, c.VHost)
}

func ensureDefaultConnectionConfigValues(conf *ConnectionConfig) {
	if conf.RequestQueue == "" {
		conf.RequestQueue = "chunkstore.requests"
	}
	if conf.RPCTimeout == 0 {
		conf.RPCTimeout = 30 * time.Second
	}
}
