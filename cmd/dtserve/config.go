package main

import (
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the service configuration, typically read from a YAML
// file.  Command-line flags override values in the file.
type Config struct {
	// HTTPPort is the address for the HTTP service.
	HTTPPort string `yaml:"httpPort"`

	// MaxConns limits concurrent HTTP connections.  Zero means no
	// limit.
	MaxConns int `yaml:"maxConns"`

	// WebSockets enables the /ws/api endpoint.
	WebSockets bool `yaml:"websockets"`

	// TablesDir holds YAML (or Markdown) table sources.
	TablesDir string `yaml:"tablesDir"`

	// StoreFile is an optional bbolt file for tables added via
	// the API.
	StoreFile string `yaml:"storeFile"`

	// Reload is an optional cron expression for rereading
	// TablesDir.
	Reload string `yaml:"reload"`

	// Watch rereads TablesDir when its files change.
	Watch bool `yaml:"watch"`

	// EvalTimeout bounds each evaluation (including derivations).
	EvalTimeout time.Duration `yaml:"evalTimeout"`

	MQTT *MQTTConfig `yaml:"mqtt,omitempty"`

	Debug bool `yaml:"debug"`
}

// MQTTConfig configures the optional MQTT bridge.
type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientId  string `yaml:"clientId"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	KeepAlive int    `yaml:"keepAlive"`
	Reconnect bool   `yaml:"reconnect"`
	Quiesce   uint   `yaml:"quiesce"`

	// Prefix is the topic prefix.  Requests arrive on
	// PREFIX/eval/TABLE and results go to PREFIX/result/TABLE.
	Prefix string `yaml:"prefix"`

	QoS byte `yaml:"qos"`
}

// DefaultConfig returns the configuration used when there's no file.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:    ":8080",
		TablesDir:   "tables",
		EvalTimeout: 5 * time.Second,
	}
}

// LoadConfig reads a YAML configuration file on top of
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	c := DefaultConfig()
	if filename == "" {
		return c, nil
	}
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err = yaml.UnmarshalStrict(bs, c); err != nil {
		return nil, err
	}
	if c.MQTT != nil {
		if c.MQTT.Prefix == "" {
			c.MQTT.Prefix = "dtable"
		}
		if c.MQTT.KeepAlive == 0 {
			c.MQTT.KeepAlive = 10
		}
		if c.MQTT.Quiesce == 0 {
			c.MQTT.Quiesce = 100
		}
	}
	return c, nil
}
