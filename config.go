package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"img2pdf/internal/converter"
)

func setDefaults(v *viper.Viper) {
	d := converter.NewDefaultConfig()
	v.SetDefault("sentinels.dir", d.Sentinels.Dir)
	v.SetDefault("sentinels.first", d.Sentinels.First)
	v.SetDefault("sentinels.last", d.Sentinels.Last)
	v.SetDefault("quality", d.JPEGQuality)
	v.SetDefault("thumbnail.size", d.ThumbSize)
	v.SetDefault("extensions.loose", d.LooseExtensions)
	v.SetDefault("keep_compressed", d.KeepCompressed)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.root", ".")

	v.SetEnvPrefix("IMG2PDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// readConfigFile loads cfgFile, or img2pdf.yaml from the working directory or
// the user config directory. A missing default file is not an error.
func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("img2pdf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "img2pdf"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("could not read config: %w", err)
	}
	slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	return nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func converterConfig(v *viper.Viper) *converter.Config {
	return &converter.Config{
		Sentinels: converter.Sentinels{
			Dir:   v.GetString("sentinels.dir"),
			First: v.GetString("sentinels.first"),
			Last:  v.GetString("sentinels.last"),
		},
		JPEGQuality:     v.GetInt("quality"),
		ThumbSize:       v.GetInt("thumbnail.size"),
		LooseExtensions: v.GetBool("extensions.loose"),
		KeepCompressed:  v.GetBool("keep_compressed"),
	}
}

func setupLogger(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
