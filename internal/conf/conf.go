// Package conf loads the client bootstrap configuration: yaml file over
// built-in defaults, with optional hot reload.
package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yola1107/cards56/library/zlog"
)

// Client configures the hub connection.
type Client struct {
	Endpoint      string        `yaml:"endpoint"`
	InvokeTimeout time.Duration `yaml:"invokeTimeout"`
	DialTimeout   time.Duration `yaml:"dialTimeout"`
	ReadDeadline  time.Duration `yaml:"readDeadline"`
	PingInterval  time.Duration `yaml:"pingInterval"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
	Retry         Retry         `yaml:"retry"`
}

// Retry configures the reconnect backoff steps.
type Retry struct {
	ShortDelay  time.Duration `yaml:"shortDelay"`
	MediumDelay time.Duration `yaml:"mediumDelay"`
	LongDelay   time.Duration `yaml:"longDelay"`
	MaxAttempts int           `yaml:"maxAttempts"`
}

// Login holds default login parameters used when nothing is persisted.
type Login struct {
	UserName  string `yaml:"userName"`
	TableType string `yaml:"tableType"`
	TableName string `yaml:"tableName"`
	Language  string `yaml:"language"`
	WatchOnly bool   `yaml:"watchOnly"`
}

// Bootstrap is the full client configuration.
type Bootstrap struct {
	Client  Client      `yaml:"client"`
	Login   Login       `yaml:"login"`
	DataDir string      `yaml:"dataDir"`
	Log     zlog.Config `yaml:"log"`
}

func Default() *Bootstrap {
	return &Bootstrap{
		Client: Client{
			Endpoint:      "ws://127.0.0.1:8080/Cards56Hub",
			InvokeTimeout: 10 * time.Second,
			DialTimeout:   10 * time.Second,
			ReadDeadline:  60 * time.Second,
			PingInterval:  10 * time.Second,
			WriteTimeout:  10 * time.Second,
			Retry: Retry{
				ShortDelay:  time.Second,
				MediumDelay: 2 * time.Second,
				LongDelay:   5 * time.Second,
				MaxAttempts: 30,
			},
		},
		Login: Login{
			TableType: "0",
			Language:  "ml",
		},
		DataDir: ".cards56",
		Log:     *zlog.DefaultConfig(),
	}
}

// Load reads the yaml file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Bootstrap, error) {
	bc := Default()
	if path == "" {
		return bc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conf: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, bc); err != nil {
		return nil, fmt.Errorf("conf: parse %q: %w", path, err)
	}
	return bc, nil
}
