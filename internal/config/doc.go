// Package config provides configuration structures and utilities for
// serpdigest. It defines the pipeline policy knobs (request delay,
// result cap, content bound), report output settings, and the YAML
// configuration file loader.
package config
