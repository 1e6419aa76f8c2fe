package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/cli/config"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the risk matrix and role catalog configuration",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			matrix, roles, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"categories", len(matrix.Categories),
				"likelihood_levels", len(matrix.Likelihood),
				"buckets", len(matrix.Buckets),
				"roles", len(roles.List()),
			)

			for _, cat := range matrix.Categories {
				logger.Info("Category validated",
					"id", cat.ID,
					"name", cat.Name,
					"impact_levels", len(cat.Impact),
				)
			}
			for _, role := range roles.List() {
				logger.Info("Role validated",
					"id", role.ID,
					"name", role.Name,
					"sections", len(role.Sections),
				)
			}

			return nil
		},
	}
}
