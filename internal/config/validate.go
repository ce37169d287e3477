package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/heartmarshall/myenglish-lookup/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
// Failures are *domain.ValidationError naming the offending YAML field.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return domain.NewValidationError("database.dsn",
				fmt.Sprintf("required for store driver %q", DriverPostgres))
		}
		if c.Database.MaxConns <= 0 {
			return domain.NewValidationError("database.max_conns",
				fmt.Sprintf("must be > 0 (got %d)", c.Database.MaxConns))
		}
		if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			return domain.NewValidationError("database.min_conns",
				fmt.Sprintf("must be within [0, max_conns] (got %d)", c.Database.MinConns))
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return domain.NewValidationError("sqlite.path",
				fmt.Sprintf("required for store driver %q", DriverSQLite))
		}
	default:
		return domain.NewValidationError("store.driver",
			fmt.Sprintf("must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Store.Driver))
	}

	if err := c.Dictionary.validate(); err != nil {
		return err
	}

	if c.Search.FetchTimeout <= 0 {
		return domain.NewValidationError("search.fetch_timeout",
			fmt.Sprintf("must be > 0 (got %v)", c.Search.FetchTimeout))
	}
	if c.Speech.ResetDelay < 0 {
		return domain.NewValidationError("speech.reset_delay",
			fmt.Sprintf("must be >= 0 (got %v)", c.Speech.ResetDelay))
	}

	return nil
}

func (d *DictionaryConfig) validate() error {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return domain.NewValidationError("dictionary.base_url", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.NewValidationError("dictionary.base_url",
			fmt.Sprintf("must be an http(s) URL (got %q)", d.BaseURL))
	}
	if d.Timeout <= 0 {
		return domain.NewValidationError("dictionary.timeout",
			fmt.Sprintf("must be > 0 (got %v)", d.Timeout))
	}
	return nil
}
