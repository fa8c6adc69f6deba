package core

import (
	"fmt"
	"strings"
)

type Config struct {
	ServiceName    string     `koanf:"service_name" mapstructure:"service_name"`
	Credential     Credential `koanf:"credential" mapstructure:"credential"`
	ContinueOnFail bool       `koanf:"continue_on_fail" mapstructure:"continue_on_fail"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "outplay",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return nil
}
