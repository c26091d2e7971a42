package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/dbsmedya/getversions/internal/logger"
	"github.com/dbsmedya/getversions/internal/poller"
)

// ErrAssociationNotFound is returned when no association of the document
// targets the requested environment.
var ErrAssociationNotFound = errors.New("association not found")

// Fleet issues Systems Manager calls against the managed instances.
type Fleet struct {
	api    SSMAPI
	logger *logger.Logger
}

// NewFleet creates a Fleet over api.
func NewFleet(api SSMAPI, log *logger.Logger) (*Fleet, error) {
	if api == nil {
		return nil, fmt.Errorf("ssm client is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Fleet{api: api, logger: log}, nil
}

// FindAssociationID returns the id of the association for document whose
// first target is tagKey=environment. Targets cannot be filtered
// server-side, so every association of the document is listed.
func (f *Fleet) FindAssociationID(ctx context.Context, document, tagKey, environment string) (string, error) {
	input := &ssm.ListAssociationsInput{
		AssociationFilterList: []types.AssociationFilter{
			{
				Key:   types.AssociationFilterKeyName,
				Value: aws.String(document),
			},
		},
	}

	p := ssm.NewListAssociationsPaginator(f.api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list associations: %w", err)
		}
		for _, a := range page.Associations {
			if len(a.Targets) == 0 {
				continue
			}
			target := a.Targets[0]
			if aws.ToString(target.Key) == tagKey && len(target.Values) > 0 && target.Values[0] == environment {
				id := aws.ToString(a.AssociationId)
				f.logger.Debugw("Found association",
					"document", document,
					"environment", environment,
					"association_id", id,
				)
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("%w: document %q with %s=%s", ErrAssociationNotFound, document, tagKey, environment)
}

// AssociationStatus returns the overview status of an association.
func (f *Fleet) AssociationStatus(ctx context.Context, associationID string) (poller.Status, error) {
	out, err := f.api.DescribeAssociation(ctx, &ssm.DescribeAssociationInput{
		AssociationId: aws.String(associationID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe association %s: %w", associationID, err)
	}

	var raw string
	if out.AssociationDescription != nil && out.AssociationDescription.Overview != nil {
		raw = aws.ToString(out.AssociationDescription.Overview.Status)
	}

	st, ok := poller.ParseStatus(raw)
	if !ok {
		f.logger.Warnw("Unrecognised association status, treating as pending",
			"association_id", associationID,
			"status", raw,
		)
	}
	return st, nil
}

// UpdateOutputPrefix points the association's S3 output at bucket/prefix.
// UpdateAssociation resets optional fields that are not resent, so the
// current definition is read first and carried over.
func (f *Fleet) UpdateOutputPrefix(ctx context.Context, associationID, region, bucket, prefix string) error {
	desc, err := f.api.DescribeAssociation(ctx, &ssm.DescribeAssociationInput{
		AssociationId: aws.String(associationID),
	})
	if err != nil {
		return fmt.Errorf("failed to describe association %s: %w", associationID, err)
	}

	input := &ssm.UpdateAssociationInput{
		AssociationId: aws.String(associationID),
		OutputLocation: &types.InstanceAssociationOutputLocation{
			S3Location: &types.S3OutputLocation{
				OutputS3Region:     aws.String(region),
				OutputS3BucketName: aws.String(bucket),
				OutputS3KeyPrefix:  aws.String(prefix),
			},
		},
	}
	if d := desc.AssociationDescription; d != nil {
		input.Name = d.Name
		input.AssociationName = d.AssociationName
		input.DocumentVersion = d.DocumentVersion
		input.ScheduleExpression = d.ScheduleExpression
		input.Parameters = d.Parameters
		input.Targets = d.Targets
	}

	if _, err := f.api.UpdateAssociation(ctx, input); err != nil {
		return fmt.Errorf("failed to update association %s output location: %w", associationID, err)
	}

	f.logger.Infow("Updated association output location",
		"association_id", associationID,
		"bucket", bucket,
		"prefix", prefix,
	)
	return nil
}

// SendRefresh asks the targets to apply the association now. The refresh
// command writes no output of its own; results land under the
// association's output location.
func (f *Fleet) SendRefresh(ctx context.Context, refreshDocument, associationID, tagKey, environment string) (string, error) {
	return f.SendCommand(ctx, CommandRequest{
		DocumentName: refreshDocument,
		Comment:      "Refresh Association",
		TagKey:       tagKey,
		TagValues:    []string{environment},
		Parameters: map[string][]string{
			"associationIds": {associationID},
		},
	})
}
