package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tuannm99/kqlmagic/internal/render"
)

var ErrUnknownOption = errors.New("kqlmagic: unknown option")

// MagicOptions are the knobs a notebook user flips with %config.
// Zero limits mean "no limit".
type MagicOptions struct {
	AutoLimit       int    `mapstructure:"autolimit"`
	DisplayLimit    int    `mapstructure:"displaylimit"`
	Style           string `mapstructure:"style"`
	ColumnLocalVars bool   `mapstructure:"column_local_vars"`
	AutoDataFrame   bool   `mapstructure:"auto_dataframe"`
	Feedback        bool   `mapstructure:"feedback"`
}

type KqlMagicConfig struct {
	AppName string `mapstructure:"app_name"`

	Magic MagicOptions `mapstructure:"magic"`

	Server struct {
		Connection string        `mapstructure:"connection"`
		Timeout    time.Duration `mapstructure:"timeout"`
		Debug      bool          `mapstructure:"debug"`
	} `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "kqlmagic")
	v.SetDefault("magic.autolimit", 0)
	v.SetDefault("magic.displaylimit", 0)
	v.SetDefault("magic.style", render.StyleGrid.String())
	v.SetDefault("magic.column_local_vars", false)
	v.SetDefault("magic.auto_dataframe", false)
	v.SetDefault("magic.feedback", true)
	v.SetDefault("server.connection", "")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.debug", false)
}

// DefaultConfig returns the built-in defaults without reading files or env.
func DefaultConfig() *KqlMagicConfig {
	cfg, err := load(viper.New(), "")
	if err != nil {
		panic(err) // defaults are static
	}
	return cfg
}

// LoadConfig reads an optional yaml file and KQLMAGIC_* environment
// variables on top of the defaults. An empty path skips the file.
func LoadConfig(path string) (*KqlMagicConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("KQLMAGIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return load(v, path)
}

func load(v *viper.Viper, path string) (*KqlMagicConfig, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg KqlMagicConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Magic.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// Validate checks limits and the style name.
func (o *MagicOptions) Validate() error {
	if o.AutoLimit < 0 {
		return fmt.Errorf("autolimit must be >= 0, got %d", o.AutoLimit)
	}
	if o.DisplayLimit < 0 {
		return fmt.Errorf("displaylimit must be >= 0, got %d", o.DisplayLimit)
	}
	_, err := render.ParseStyle(o.Style)
	return err
}

// RenderStyle returns the parsed Style, falling back to the grid.
func (o *MagicOptions) RenderStyle() render.Style {
	s, err := render.ParseStyle(o.Style)
	if err != nil {
		return render.StyleGrid
	}
	return s
}

// Set applies a single "key = value" update. Keys may carry a
// "KqlMagic." prefix; limits accept "None" as "no limit".
func (o *MagicOptions) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimPrefix(key, "kqlmagic.")
	value = strings.Trim(strings.TrimSpace(value), `'"`)

	switch key {
	case "autolimit":
		n, err := parseLimit(value)
		if err != nil {
			return fmt.Errorf("autolimit: %w", err)
		}
		o.AutoLimit = n
	case "displaylimit":
		n, err := parseLimit(value)
		if err != nil {
			return fmt.Errorf("displaylimit: %w", err)
		}
		o.DisplayLimit = n
	case "style":
		s, err := render.ParseStyle(value)
		if err != nil {
			return err
		}
		o.Style = s.String()
	case "column_local_vars":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("column_local_vars: %w", err)
		}
		o.ColumnLocalVars = b
	case "auto_dataframe", "autopandas":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_dataframe: %w", err)
		}
		o.AutoDataFrame = b
	case "feedback":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		o.Feedback = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	return nil
}

func parseLimit(s string) (int, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0, got %d", n)
	}
	return n, nil
}
