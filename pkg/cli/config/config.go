package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/briareus/pkg/domain/model/config"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// AppConfig is the TOML file layout for the scoring matrix and role
// catalog. An absent file means the built-in defaults.
type AppConfig struct {
	Categories []Category        `toml:"category"`
	Likelihood []LikelihoodLevel `toml:"likelihood"`
	Buckets    []LevelBucket     `toml:"bucket"`
	Roles      []Role            `toml:"role"`

	path string
}

// Category represents a risk category with its own impact scale
type Category struct {
	ID          string        `toml:"id"`
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Impact      []ImpactLevel `toml:"impact"`
}

// LikelihoodLevel represents one point on the likelihood scale
type LikelihoodLevel struct {
	ID          string  `toml:"id"`
	Name        string  `toml:"name"`
	Description string  `toml:"description"`
	Weight      float64 `toml:"weight"`
}

// ImpactLevel represents one point on a category's impact scale
type ImpactLevel struct {
	ID          string  `toml:"id"`
	Name        string  `toml:"name"`
	Description string  `toml:"description"`
	Weight      float64 `toml:"weight"`
}

// LevelBucket maps an inclusive score range to a risk level
type LevelBucket struct {
	Level string  `toml:"level"`
	Min   float64 `toml:"min"`
	Max   float64 `toml:"max"`
}

// Role maps a role to its default dashboard sections
type Role struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Sections    []string `toml:"sections"`
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration for the risk matrix and role catalog",
			Sources:     cli.EnvVars("BRIAREUS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// ToRiskMatrix converts the file layout to the domain matrix
func (a *AppConfig) ToRiskMatrix() *domainConfig.RiskMatrix {
	categories := make([]domainConfig.Category, len(a.Categories))
	for i, cat := range a.Categories {
		impact := make([]domainConfig.ImpactLevel, len(cat.Impact))
		for j, lv := range cat.Impact {
			impact[j] = domainConfig.ImpactLevel{
				ID:          types.ImpactID(lv.ID),
				Name:        lv.Name,
				Description: lv.Description,
				Weight:      lv.Weight,
			}
		}
		categories[i] = domainConfig.Category{
			ID:          types.CategoryID(cat.ID),
			Name:        cat.Name,
			Description: cat.Description,
			Impact:      impact,
		}
	}

	likelihood := make([]domainConfig.LikelihoodLevel, len(a.Likelihood))
	for i, lv := range a.Likelihood {
		likelihood[i] = domainConfig.LikelihoodLevel{
			ID:          types.LikelihoodID(lv.ID),
			Name:        lv.Name,
			Description: lv.Description,
			Weight:      lv.Weight,
		}
	}

	buckets := make([]domainConfig.LevelBucket, len(a.Buckets))
	for i, b := range a.Buckets {
		buckets[i] = domainConfig.LevelBucket{
			Level: types.RiskLevel(b.Level),
			Min:   b.Min,
			Max:   b.Max,
		}
	}

	return &domainConfig.RiskMatrix{
		Categories: categories,
		Likelihood: likelihood,
		Buckets:    buckets,
	}
}

// ToRoleCatalog converts the file layout to the domain catalog
func (a *AppConfig) ToRoleCatalog() *domainConfig.RoleCatalog {
	entries := make([]domainConfig.RoleEntry, len(a.Roles))
	for i, r := range a.Roles {
		sections := make([]types.SectionID, len(r.Sections))
		for j, s := range r.Sections {
			sections[j] = types.SectionID(s)
		}
		entries[i] = domainConfig.RoleEntry{
			ID:          types.RoleID(r.ID),
			Name:        r.Name,
			Description: r.Description,
			Sections:    sections,
		}
	}
	return domainConfig.NewRoleCatalog(entries)
}

// LoadAppConfiguration loads and validates the configuration from a TOML
// file. Matrix and roles are each optional: an omitted table falls back to
// the built-in default for that piece.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}
	config.path = path

	if len(config.Categories) > 0 || len(config.Likelihood) > 0 || len(config.Buckets) > 0 {
		if err := config.ToRiskMatrix().Validate(); err != nil {
			return nil, goerr.Wrap(err, "risk matrix validation failed", goerr.V(ConfigPathKey, path))
		}
	}
	if len(config.Roles) > 0 {
		if err := config.ToRoleCatalog().Validate(); err != nil {
			return nil, goerr.Wrap(err, "role catalog validation failed", goerr.V(ConfigPathKey, path))
		}
	}

	return &config, nil
}

// Configure resolves the scoring matrix and role catalog. Without a config
// path both come from the built-in defaults.
func (a *AppConfig) Configure() (*domainConfig.RiskMatrix, *domainConfig.RoleCatalog, error) {
	matrix := domainConfig.DefaultRiskMatrix()
	roles := domainConfig.DefaultRoleCatalog()

	if a.path == "" {
		logging.Default().Info("No config file specified, using built-in matrix and roles")
		return matrix, roles, nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, nil, err
	}

	if len(loaded.Categories) > 0 || len(loaded.Likelihood) > 0 || len(loaded.Buckets) > 0 {
		matrix = loaded.ToRiskMatrix()
	}
	if len(loaded.Roles) > 0 {
		roles = loaded.ToRoleCatalog()
	}

	logging.Default().Info("Loaded configuration",
		"path", a.path,
		"categories", len(matrix.Categories),
		"likelihood_levels", len(matrix.Likelihood),
		"buckets", len(matrix.Buckets),
		"roles", len(roles.List()),
	)

	return matrix, roles, nil
}
