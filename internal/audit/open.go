package audit

import (
	"context"
	"fmt"

	"github.com/0muji4/push-gate/internal/config"
)

// Open connects every sink enabled in cfg. It returns an empty Multi when
// auditing is off.
func Open(ctx context.Context, cfg *config.Config) (Multi, error) {
	var sinks Multi

	if cfg.Audit.DatabaseURL != "" {
		pg, err := OpenPostgres(ctx, cfg.Audit.DatabaseURL, cfg.Audit.PingTimeout)
		if err != nil {
			return nil, fmt.Errorf("audit database: %w", err)
		}
		sinks = append(sinks, pg)
	}

	if cfg.Archive.Enabled {
		archive, err := OpenArchive(ctx, ArchiveOptions{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("report archive: %w", err)
		}
		sinks = append(sinks, archive)
	}

	return sinks, nil
}
