/*
Package config provides typed, defaulted access to a parsed flat
configuration file.

# Basic Usage

	cfg, err := config.FromFile("server.yml")
	if err != nil {
	    log.Fatal(err)
	}

	name := cfg.String("name", "default")         // "srv1"
	slots := cfg.Int("slots", 1)                   // 4
	timeout := cfg.Duration("timeout", 10*time.Second)

All accessors return the default if the key is missing or holds the other
kind.

# Duration

Duration accepts a quoted string parsed with time.ParseDuration ("30s",
"1h30m") or an integer number of seconds.

# Comparing With Full YAML

FromYAML reads the same file with a complete YAML parser and keeps only
top-level integers and strings. For files written in the flat subset the
two Configs are equal.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
