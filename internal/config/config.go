package config

import (
	"time"

	"github.com/rs/zerolog"
)

type Config interface {
	HTTPPort() string

	SchemaPath() string
	APITitle() string

	MaxHeaderBytes() int
	MaxBodyBytes() int64
	ReadTimeout() time.Duration
	HandlerTimeout() time.Duration

	RateLimit() float64
	RateBurst() int

	MetricsEnabled() bool
	MetricsPort() string

	PprofEnabled() bool
	PprofPort() string

	LogLevel() zerolog.Level
	LogFormat() string
}

func MustLoad() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) HTTPPort() string              { return c.httpPort }
func (c *config) SchemaPath() string            { return c.schemaPath }
func (c *config) APITitle() string              { return c.apiTitle }
func (c *config) MaxHeaderBytes() int           { return c.maxHeaderBytes }
func (c *config) MaxBodyBytes() int64           { return c.maxBodyBytes }
func (c *config) ReadTimeout() time.Duration    { return c.readTimeout }
func (c *config) HandlerTimeout() time.Duration { return c.handlerTimeout }
func (c *config) RateLimit() float64            { return c.rateLimit }
func (c *config) RateBurst() int                { return c.rateBurst }
func (c *config) MetricsEnabled() bool          { return c.metricsEnabled }
func (c *config) MetricsPort() string           { return c.metricsPort }
func (c *config) PprofEnabled() bool            { return c.pprofEnabled }
func (c *config) PprofPort() string             { return c.pprofPort }
func (c *config) LogLevel() zerolog.Level       { return c.logLevel }
func (c *config) LogFormat() string             { return c.logFormat }
