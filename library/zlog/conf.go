package zlog

type Mode int32

const (
	ModeDev  Mode = 0
	ModeProd Mode = 1
)

// Rotate controls file rotation for the production cores.
type Rotate struct {
	MaxSizeMB  int  `yaml:"maxSizeMB"`
	MaxBackups int  `yaml:"maxBackups"`
	MaxAgeDays int  `yaml:"maxAgeDays"`
	Compress   bool `yaml:"compress"`
	LocalTime  bool `yaml:"localTime"`
}

type Config struct {
	Mode       Mode    `yaml:"mode"`
	AppName    string  `yaml:"appName"`
	Level      string  `yaml:"level"`
	Directory  string  `yaml:"directory"`
	FormatJSON bool    `yaml:"formatJson"`
	ErrorFile  bool    `yaml:"errorFile"`
	Rotate     *Rotate `yaml:"rotate"`
}

func DefaultConfig(opts ...Option) *Config {
	c := &Config{
		Mode:       ModeDev,
		AppName:    "app",
		Level:      "debug",
		Directory:  "./logs",
		FormatJSON: false,
		ErrorFile:  false,
		Rotate: &Rotate{
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 7,
			Compress:   true,
			LocalTime:  true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Config)

func WithAppName(appName string) Option {
	return func(c *Config) { c.AppName = appName }
}

func WithProduction() Option {
	return func(c *Config) {
		c.Mode = ModeProd
		c.Level = "info"
	}
}

func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

func WithDirectory(dir string) Option {
	return func(c *Config) { c.Directory = dir }
}

func WithFormatJSON(enabled bool) Option {
	return func(c *Config) { c.FormatJSON = enabled }
}

func WithErrorFile(enabled bool) Option {
	return func(c *Config) { c.ErrorFile = enabled }
}
