package collector

import (
	"context"

	"github.com/dbsmedya/getversions/internal/cloud"
	"github.com/dbsmedya/getversions/internal/fetcher"
	"github.com/dbsmedya/getversions/internal/poller"
	"github.com/dbsmedya/getversions/internal/report"
)

// Command sends the version document ad hoc, to instanceIDs when given and
// otherwise to the environment's tag, waits until no invocation is
// pending, and reports each successful invocation's output.
func (c *Collector) Command(ctx context.Context, instanceIDs []string) (*report.Report, error) {
	req := cloud.CommandRequest{
		DocumentName: c.config.SSM.Document,
		Comment:      c.config.SSM.Comment,
		InstanceIDs:  instanceIDs,
		OutputRegion: c.config.AWS.Region,
		OutputBucket: c.config.Output.Bucket,
		OutputPrefix: c.config.EffectivePrefix(),
	}
	if len(instanceIDs) == 0 {
		req.TagKey = c.config.Targets.TagKey
		req.TagValues = []string{c.config.Environment}
	}

	commandID, err := c.fleet.SendCommand(ctx, req)
	if err != nil {
		return nil, err
	}
	log := c.logger.WithRun(commandID)

	var invocations []cloud.Invocation
	err = c.poller.WaitForSuccess(ctx, func(ctx context.Context) (poller.Status, error) {
		invs, err := c.fleet.ListInvocations(ctx, commandID)
		if err != nil {
			return "", err
		}
		invocations = invs
		if len(invs) == 0 {
			return poller.StatusPending, nil
		}
		for _, inv := range invs {
			if inv.Pending() {
				return poller.StatusInProgress, nil
			}
		}
		return poller.StatusSuccess, nil
	})
	if err != nil {
		return nil, err
	}

	base, err := c.BaseVersion(ctx)
	if err != nil {
		return nil, err
	}

	var results []fetcher.Result
	for _, inv := range invocations {
		if inv.Status != string(poller.StatusSuccess) {
			log.WithInstance(inv.InstanceID).Warnw("Command did not succeed", "status", inv.Status)
			continue
		}
		results = append(results, fetcher.Result{InstanceID: inv.InstanceID, Value: inv.Output})
	}

	// Unsuccessful targets are reported as missing. Explicit targets
	// replace the tag inventory.
	expected := instanceIDs
	if len(expected) == 0 {
		expected, err = c.expectedInstances(ctx)
		if err != nil {
			return nil, err
		}
	}
	if expected == nil {
		for _, inv := range invocations {
			expected = append(expected, inv.InstanceID)
		}
	}

	return c.finishWithExpected(ctx, report.ModeCommand, commandID, base, results, expected)
}
