package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var Logger = logrus.WithFields(logrus.Fields{"prefix": "config"})

const DefaultServer = "wss://api.dogehouse.tv/socket"

// Settings is the typed view of the configuration file.
type Settings struct {
	Server             string   `mapstructure:"server" validate:"required,url"`
	Token              string   `mapstructure:"token" validate:"required"`
	RefreshToken       string   `mapstructure:"refreshtoken" validate:"required"`
	Prefix             []string `mapstructure:"prefix" validate:"required,min=1,dive,required"`
	Directory          string   `mapstructure:"directory"`
	Room               string   `mapstructure:"room"`
	SkipTLSVerify      bool     `mapstructure:"skiptlsverify"`
	Debug              bool     `mapstructure:"debug"`
	Trace              bool     `mapstructure:"trace"`
	Gops               bool     `mapstructure:"gops"`
	WrapWidth          int      `mapstructure:"wrapwidth" validate:"gte=0"`
	SyntaxHighlighting string   `mapstructure:"syntaxhighlighting"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", DefaultServer)
	v.SetDefault("prefix", []string{"!"})
	v.SetDefault("wrapwidth", 80)
	v.SetDefault("syntaxhighlighting", "terminal256:monokai")
}

// LoadConfig reads cfgfile. An empty cfgfile only uses the defaults and the
// MATTERDOGE_ environment.
func LoadConfig(cfgfile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("matterdoge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	// use environment variables
	v.AutomaticEnv()

	if cfgfile == "" {
		return v, nil
	}

	v.SetConfigFile(cfgfile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s", err)
	}

	// reload config on file changes
	if runtime.GOOS != "illumos" {
		v.WatchConfig()
	}

	return v, nil
}

// Parse unmarshals and validates the settings held by v.
func Parse(v *viper.Viper) (*Settings, error) {
	s := &Settings{}

	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range []string{"token", "refreshtoken", "directory", "room", "skiptlsverify", "debug", "trace", "gops"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	Logger.Debugf("loaded settings for %s with prefixes %v", s.Server, s.Prefix)

	return s, nil
}
