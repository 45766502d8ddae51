package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/service/pantryapi"
)

// Client holds CLI flags for backend connection configuration. A TOML
// defaults file can preset any of the values; explicit flags win.
type Client struct {
	apiURL     string
	timeout    time.Duration
	pageSize   int64
	configPath string
}

// clientDefaults is the TOML defaults file shape
type clientDefaults struct {
	APIURL   string `toml:"api_url"`
	Timeout  string `toml:"timeout"`
	PageSize int    `toml:"page_size"`
}

// Flags returns CLI flags for the backend connection
func (x *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "Base URL of the pantry backend",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("SOUSSCHEF_API_URL"),
			Destination: &x.apiURL,
		},
		&cli.DurationFlag{
			Name:        "api-timeout",
			Usage:       "Request timeout for backend calls",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("SOUSSCHEF_API_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Number of entries per listing page",
			Value:       10,
			Sources:     cli.EnvVars("SOUSSCHEF_PAGE_SIZE"),
			Destination: &x.pageSize,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML file with connection defaults",
			Sources:     cli.EnvVars("SOUSSCHEF_CONFIG"),
			Destination: &x.configPath,
		},
	}
}

// PageSize returns the configured listing page size
func (x *Client) PageSize() int {
	return int(x.pageSize)
}

// Configure builds the API client. When a defaults file is given, its values
// fill in any connection setting the command line left at its default.
func (x *Client) Configure(c *cli.Command) (*pantryapi.Client, error) {
	if x.configPath != "" {
		if err := x.applyDefaults(c); err != nil {
			return nil, err
		}
	}

	client, err := pantryapi.New(x.apiURL, pantryapi.WithTimeout(x.timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build API client", goerr.V("url", x.apiURL))
	}
	return client, nil
}

func (x *Client) applyDefaults(c *cli.Command) error {
	data, err := os.ReadFile(x.configPath)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", x.configPath))
	}

	var defaults clientDefaults
	if err := toml.Unmarshal(data, &defaults); err != nil {
		return goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", x.configPath))
	}

	if defaults.APIURL != "" && !c.IsSet("api-url") {
		x.apiURL = defaults.APIURL
	}
	if defaults.Timeout != "" && !c.IsSet("api-timeout") {
		d, err := time.ParseDuration(defaults.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid timeout in config file",
				goerr.V("path", x.configPath), goerr.V("timeout", defaults.Timeout))
		}
		x.timeout = d
	}
	if defaults.PageSize > 0 && !c.IsSet("page-size") {
		x.pageSize = int64(defaults.PageSize)
	}
	return nil
}

// LogValue renders the configuration for startup logging
func (x *Client) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_url", x.apiURL),
		slog.Duration("timeout", x.timeout),
		slog.Int64("page_size", x.pageSize),
	)
}
