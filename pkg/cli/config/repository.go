package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/repository/memory"
	"github.com/pantry-lab/sousschef/pkg/repository/sqlite"
	"github.com/pantry-lab/sousschef/pkg/utils/logging"
)

// Repository holds CLI flags for the dev backend's storage configuration
type Repository struct {
	backend    string
	sqlitePath string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory or sqlite)",
			Value:       "memory",
			Sources:     cli.EnvVars("SOUSSCHEF_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file path (required when using sqlite backend)",
			Sources:     cli.EnvVars("SOUSSCHEF_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on the returned
// repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "sqlite":
		if r.sqlitePath == "" {
			return nil, goerr.New("sqlite-path is required when using sqlite backend")
		}
		repo, err := sqlite.New(r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
