package cloud

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Inventory lists the instances expected to report.
type Inventory struct {
	api EC2API
}

// NewInventory creates an Inventory over api.
func NewInventory(api EC2API) (*Inventory, error) {
	if api == nil {
		return nil, fmt.Errorf("ec2 client is nil")
	}
	return &Inventory{api: api}, nil
}

// InstanceIDs returns the sorted ids of running instances tagged
// tagKey=value. tagKey uses the "tag:<Name>" form shared by SSM targets
// and EC2 filters.
func (inv *Inventory) InstanceIDs(ctx context.Context, tagKey, value string) ([]string, error) {
	if !strings.HasPrefix(tagKey, "tag:") {
		return nil, fmt.Errorf("unsupported target key %q (expected tag:<Name>)", tagKey)
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String(tagKey), Values: []string{value}},
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	}

	var ids []string
	p := ec2.NewDescribeInstancesPaginator(inv.api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, r := range page.Reservations {
			for _, i := range r.Instances {
				ids = append(ids, aws.ToString(i.InstanceId))
			}
		}
	}

	sort.Strings(ids)
	return ids, nil
}
