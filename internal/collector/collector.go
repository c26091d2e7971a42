// Package collector coordinates dispatch, waiting, correlation and
// fetching into a per-environment version report.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dbsmedya/getversions/internal/cloud"
	"github.com/dbsmedya/getversions/internal/config"
	"github.com/dbsmedya/getversions/internal/correlate"
	"github.com/dbsmedya/getversions/internal/fetcher"
	"github.com/dbsmedya/getversions/internal/logger"
	"github.com/dbsmedya/getversions/internal/poller"
	"github.com/dbsmedya/getversions/internal/report"
)

// Fleet is the Systems Manager surface the collector drives.
type Fleet interface {
	FindAssociationID(ctx context.Context, document, tagKey, environment string) (string, error)
	AssociationStatus(ctx context.Context, associationID string) (poller.Status, error)
	UpdateOutputPrefix(ctx context.Context, associationID, region, bucket, prefix string) error
	SendRefresh(ctx context.Context, refreshDocument, associationID, tagKey, environment string) (string, error)
	SendCommand(ctx context.Context, req cloud.CommandRequest) (string, error)
	ListInvocations(ctx context.Context, commandID string) ([]cloud.Invocation, error)
	GetParameter(ctx context.Context, name string) (string, error)
}

// Objects lists and reads command output objects.
type Objects interface {
	correlate.ObjectLister
	fetcher.ObjectGetter
}

// Inventory lists the instances expected to report.
type Inventory interface {
	InstanceIDs(ctx context.Context, tagKey, value string) ([]string, error)
}

// ReportSaver persists finished reports.
type ReportSaver interface {
	SaveReport(ctx context.Context, r *report.Report) error
}

// Deps are the collaborators of a Collector. Inventory and Saver are
// optional.
type Deps struct {
	Fleet     Fleet
	Objects   Objects
	Inventory Inventory
	Saver     ReportSaver
}

// Collector runs the collection use cases for one environment.
type Collector struct {
	config     *config.Config
	fleet      Fleet
	inventory  Inventory
	saver      ReportSaver
	correlator *correlate.Correlator
	fetcher    *fetcher.Fetcher
	poller     *poller.Poller
	logger     *logger.Logger
	now        func() time.Time
}

// New creates a Collector.
func New(cfg *config.Config, deps Deps, log *logger.Logger) (*Collector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if deps.Fleet == nil {
		return nil, fmt.Errorf("fleet is nil")
	}
	if deps.Objects == nil {
		return nil, fmt.Errorf("object store is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithEnvironment(cfg.Environment)

	correlator, err := correlate.NewCorrelator(deps.Objects, log)
	if err != nil {
		return nil, err
	}
	f, err := fetcher.New(deps.Objects, cfg.Fetch, log)
	if err != nil {
		return nil, err
	}

	return &Collector{
		config:     cfg,
		fleet:      deps.Fleet,
		inventory:  deps.Inventory,
		saver:      deps.Saver,
		correlator: correlator,
		fetcher:    f,
		poller:     poller.FromConfig(cfg.Polling, log),
		logger:     log,
		now:        time.Now,
	}, nil
}

// AssociationID finds the association of the configured document that
// targets the environment.
func (c *Collector) AssociationID(ctx context.Context) (string, error) {
	return c.fleet.FindAssociationID(ctx, c.config.SSM.AssociationDocument, c.config.Targets.TagKey, c.config.Environment)
}

// WaitForAssociation blocks until the association reports Success.
func (c *Collector) WaitForAssociation(ctx context.Context, associationID string) error {
	return c.poller.WaitForSuccess(ctx, func(ctx context.Context) (poller.Status, error) {
		return c.fleet.AssociationStatus(ctx, associationID)
	})
}

// BaseVersion reads the version every instance is expected to report. A
// missing parameter yields "" so that reports are still produced.
func (c *Collector) BaseVersion(ctx context.Context) (string, error) {
	base, err := c.fleet.GetParameter(ctx, c.config.SSM.BaseParameterKey)
	if errors.Is(err, cloud.ErrParameterNotFound) {
		c.logger.Warnw("Base version parameter not found, statuses will be unknown",
			"parameter", c.config.SSM.BaseParameterKey,
		)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return base, nil
}

// settle gives asynchronous command output time to land in S3.
func (c *Collector) settle(ctx context.Context) error {
	d := c.config.Polling.SettleDelay()
	if d <= 0 {
		return nil
	}

	c.logger.Infow("Waiting for command output to settle", "delay", d)
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("settle delay interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// expectedInstances returns the instances that should have reported, or
// nil when no inventory is configured.
func (c *Collector) expectedInstances(ctx context.Context) ([]string, error) {
	if c.inventory == nil {
		return nil, nil
	}
	ids, err := c.inventory.InstanceIDs(ctx, c.config.Targets.TagKey, c.config.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to list expected instances: %w", err)
	}
	return ids, nil
}

// correlateAndFetch runs the latest-wins correlation under prefix and reads
// each selected body.
func (c *Collector) correlateAndFetch(ctx context.Context, prefix, runID string) ([]fetcher.Result, error) {
	latest, err := c.correlator.CorrelateLatest(ctx, c.config.Output.Bucket, prefix, runID)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("Correlated latest output",
		"prefix", prefix,
		"run_id", runID,
		"instances", len(latest),
	)
	return c.fetcher.Fetch(ctx, c.config.Output.Bucket, latest)
}

// finish builds the report, adds expected-but-absent instances as
// missing, and saves it when a saver is configured.
func (c *Collector) finish(ctx context.Context, mode report.Mode, runID, base string, results []fetcher.Result) (*report.Report, error) {
	expected, err := c.expectedInstances(ctx)
	if err != nil {
		return nil, err
	}
	return c.finishWithExpected(ctx, mode, runID, base, results, expected)
}

func (c *Collector) finishWithExpected(ctx context.Context, mode report.Mode, runID, base string, results []fetcher.Result, expected []string) (*report.Report, error) {
	r := buildReport(c.config.Environment, mode, runID, base, results, expected)
	r.GeneratedAt = c.now().UTC()

	if c.saver != nil {
		if err := c.saver.SaveReport(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to save report: %w", err)
		}
	}

	counts := r.Counts()
	log := c.logger.WithFields(map[string]interface{}{
		"mode":   mode,
		"run_id": runID,
	})
	log.Infow("Report ready",
		"instances", len(r.Entries),
		"current", counts[report.StatusCurrent],
		"outdated", counts[report.StatusOutdated],
		"missing", counts[report.StatusMissing],
	)
	if !r.Healthy() {
		log.Warnw("Fleet is not on the base version", "base_version", base)
	}
	return r, nil
}

func buildReport(environment string, mode report.Mode, runID, base string, results []fetcher.Result, expected []string) *report.Report {
	r := &report.Report{
		Environment: environment,
		Mode:        mode,
		RunID:       runID,
		BaseVersion: base,
	}

	seen := make(map[string]bool, len(results))
	for _, res := range results {
		seen[res.InstanceID] = true
		r.Entries = append(r.Entries, report.Entry{
			InstanceID: res.InstanceID,
			Value:      res.Value,
			Key:        res.Key,
			Status:     report.Classify(res.Value, base),
		})
	}
	for _, id := range expected {
		if !seen[id] {
			seen[id] = true
			r.Entries = append(r.Entries, report.Entry{InstanceID: id, Status: report.StatusMissing})
		}
	}

	sort.Slice(r.Entries, func(i, j int) bool {
		return r.Entries[i].InstanceID < r.Entries[j].InstanceID
	})
	return r
}
