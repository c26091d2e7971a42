package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// instanceIDsTargetKey selects instances by id in a command target.
const instanceIDsTargetKey = "InstanceIds"

// CommandRequest describes one SendCommand call. Either InstanceIDs or
// TagKey/TagValues selects the targets. Output is written to S3 only when
// OutputBucket is set.
type CommandRequest struct {
	DocumentName string
	Comment      string
	TagKey       string
	TagValues    []string
	InstanceIDs  []string
	Parameters   map[string][]string
	OutputRegion string
	OutputBucket string
	OutputPrefix string
}

// Invocation is the per-instance outcome of a command.
type Invocation struct {
	InstanceID string
	Status     string
	Output     string
}

// Pending reports whether the invocation may still change status.
func (i Invocation) Pending() bool {
	switch types.CommandInvocationStatus(i.Status) {
	case types.CommandInvocationStatusPending,
		types.CommandInvocationStatusInProgress,
		types.CommandInvocationStatusDelayed,
		types.CommandInvocationStatusCancelling:
		return true
	}
	return false
}

// SendCommand dispatches a document and returns the command id.
func (f *Fleet) SendCommand(ctx context.Context, req CommandRequest) (string, error) {
	input := &ssm.SendCommandInput{
		DocumentName: aws.String(req.DocumentName),
		Parameters:   req.Parameters,
	}
	if req.Comment != "" {
		input.Comment = aws.String(req.Comment)
	}

	switch {
	case len(req.InstanceIDs) > 0:
		input.Targets = []types.Target{{
			Key:    aws.String(instanceIDsTargetKey),
			Values: req.InstanceIDs,
		}}
	case req.TagKey != "":
		input.Targets = []types.Target{{
			Key:    aws.String(req.TagKey),
			Values: req.TagValues,
		}}
	default:
		return "", fmt.Errorf("command %s has no targets", req.DocumentName)
	}

	if req.OutputBucket != "" {
		input.OutputS3BucketName = aws.String(req.OutputBucket)
		input.OutputS3KeyPrefix = aws.String(req.OutputPrefix)
		if req.OutputRegion != "" {
			input.OutputS3Region = aws.String(req.OutputRegion)
		}
	}

	out, err := f.api.SendCommand(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to send command %s: %w", req.DocumentName, err)
	}
	if out.Command == nil || out.Command.CommandId == nil {
		return "", fmt.Errorf("send command %s returned no command id", req.DocumentName)
	}

	id := aws.ToString(out.Command.CommandId)
	f.logger.Infow("Sent command",
		"document", req.DocumentName,
		"command_id", id,
	)
	return id, nil
}

// ListInvocations returns every invocation of commandID with the output of
// its first plugin, trailing newline removed.
func (f *Fleet) ListInvocations(ctx context.Context, commandID string) ([]Invocation, error) {
	input := &ssm.ListCommandInvocationsInput{
		CommandId: aws.String(commandID),
		Details:   true,
	}

	var out []Invocation
	p := ssm.NewListCommandInvocationsPaginator(f.api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list invocations for command %s: %w", commandID, err)
		}
		for _, inv := range page.CommandInvocations {
			item := Invocation{
				InstanceID: aws.ToString(inv.InstanceId),
				Status:     string(inv.Status),
			}
			if len(inv.CommandPlugins) > 0 {
				item.Output = strings.TrimRight(aws.ToString(inv.CommandPlugins[0].Output), "\r\n")
			}
			out = append(out, item)
		}
	}

	return out, nil
}
