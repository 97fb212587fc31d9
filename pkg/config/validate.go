package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dictionary.Path) == "" {
		return fmt.Errorf("dictionary.path must be set")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0 (got %v)", c.Fetch.Timeout)
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second must be >= 0 (got %v)", c.Fetch.RequestsPerSecond)
	}
	if c.Fetch.Workers < 1 {
		return fmt.Errorf("fetch.workers must be >= 1 (got %d)", c.Fetch.Workers)
	}
	for name, v := range map[string]string{
		"lexical.base_url":     c.Lexical.BaseURL,
		"lexical.section":      c.Lexical.Section,
		"lexical.pos":          c.Lexical.POS,
		"lexical.gloss":        c.Lexical.Gloss,
		"translation.base_url": c.Translation.BaseURL,
		"translation.table":    c.Translation.Table,
		"translation.cell":     c.Translation.Cell,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}
