package collector

import (
	"context"
	"time"

	"github.com/dbsmedya/getversions/internal/report"
)

// dayLayout names the dated output prefix used by Daily.
const dayLayout = "2006-01-02"

// RefreshOptions tunes Refresh.
type RefreshOptions struct {
	// Relocate resets the association output prefix before refreshing.
	Relocate bool
}

// Refresh re-applies the environment's association now, waits for output
// to settle, and reports the latest output of that association per
// instance.
func (c *Collector) Refresh(ctx context.Context, opts RefreshOptions) (*report.Report, error) {
	prefix := c.config.EffectivePrefix()

	id, err := c.AssociationID(ctx)
	if err != nil {
		return nil, err
	}
	log := c.logger.WithRun(id)

	if opts.Relocate {
		if err := c.Relocate(ctx, id, prefix); err != nil {
			return nil, err
		}
	}

	if _, err := c.fleet.SendRefresh(ctx, c.config.SSM.RefreshDocument, id, c.config.Targets.TagKey, c.config.Environment); err != nil {
		return nil, err
	}
	log.Info("Association refresh sent")

	if err := c.settle(ctx); err != nil {
		return nil, err
	}

	return c.collect(ctx, report.ModeRun, prefix, id)
}

// Daily moves the association output under a prefix named for day, then
// refreshes and reports from that prefix only.
func (c *Collector) Daily(ctx context.Context, day time.Time) (*report.Report, error) {
	prefix := day.UTC().Format(dayLayout)

	id, err := c.RelocateEnvironment(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if _, err := c.fleet.SendRefresh(ctx, c.config.SSM.RefreshDocument, id, c.config.Targets.TagKey, c.config.Environment); err != nil {
		return nil, err
	}
	c.logger.WithRun(id).Infow("Association refresh sent", "prefix", prefix)

	if err := c.settle(ctx); err != nil {
		return nil, err
	}

	return c.collect(ctx, report.ModeDaily, prefix, id)
}

// Collect reports from output already in the bucket without dispatching.
// An empty runID correlates across every run.
func (c *Collector) Collect(ctx context.Context, runID string) (*report.Report, error) {
	mode := report.ModeRun
	if runID == "" {
		mode = report.ModeGlobal
	}
	return c.collect(ctx, mode, c.config.EffectivePrefix(), runID)
}

func (c *Collector) collect(ctx context.Context, mode report.Mode, prefix, runID string) (*report.Report, error) {
	base, err := c.BaseVersion(ctx)
	if err != nil {
		return nil, err
	}

	results, err := c.correlateAndFetch(ctx, prefix, runID)
	if err != nil {
		return nil, err
	}

	return c.finish(ctx, mode, runID, base, results)
}
