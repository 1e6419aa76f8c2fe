package config

import (
	"context"

	"github.com/secmon-lab/briareus/pkg/service/export"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Export holds CLI flags for Cloud Storage export configuration
type Export struct {
	bucket string
}

func (x *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-bucket",
			Usage:       "Cloud Storage bucket for account CSV exports",
			Category:    "Export",
			Sources:     cli.EnvVars("BRIAREUS_EXPORT_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

// IsConfigured reports whether bucket export is enabled
func (x *Export) IsConfigured() bool {
	return x.bucket != ""
}

// Configure creates the export service. Returns nil when no bucket is
// configured.
func (x *Export) Configure(ctx context.Context) (*export.Service, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Export bucket not configured, scheduled exports disabled")
		return nil, nil
	}
	return export.New(ctx, x.bucket)
}
