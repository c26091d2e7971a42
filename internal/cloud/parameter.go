package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrParameterNotFound is returned when the parameter does not exist.
var ErrParameterNotFound = errors.New("parameter not found")

// GetParameter reads a plain (undecrypted) parameter store value.
func (f *Fleet) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := f.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(false),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrParameterNotFound, name)
		}
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("%w: %s", ErrParameterNotFound, name)
	}

	value := aws.ToString(out.Parameter.Value)
	f.logger.Debugw("Read parameter", "name", name, "value", value)
	return value, nil
}
