package cloud

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type fakeSSM struct {
	associationPages []*ssm.ListAssociationsOutput
	describe         *ssm.DescribeAssociationOutput
	describeErr      error
	updateErr        error
	sendOutput       *ssm.SendCommandOutput
	sendErr          error
	invocationPages  []*ssm.ListCommandInvocationsOutput
	parameter        *ssm.GetParameterOutput
	parameterErr     error

	listCalls int
	updates   []*ssm.UpdateAssociationInput
	sends     []*ssm.SendCommandInput
}

func (f *fakeSSM) ListAssociations(_ context.Context, _ *ssm.ListAssociationsInput, _ ...func(*ssm.Options)) (*ssm.ListAssociationsOutput, error) {
	if f.listCalls >= len(f.associationPages) {
		return &ssm.ListAssociationsOutput{}, nil
	}
	page := f.associationPages[f.listCalls]
	f.listCalls++
	return page, nil
}

func (f *fakeSSM) DescribeAssociation(_ context.Context, _ *ssm.DescribeAssociationInput, _ ...func(*ssm.Options)) (*ssm.DescribeAssociationOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if f.describe == nil {
		return &ssm.DescribeAssociationOutput{}, nil
	}
	return f.describe, nil
}

func (f *fakeSSM) UpdateAssociation(_ context.Context, in *ssm.UpdateAssociationInput, _ ...func(*ssm.Options)) (*ssm.UpdateAssociationOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &ssm.UpdateAssociationOutput{}, nil
}

func (f *fakeSSM) SendCommand(_ context.Context, in *ssm.SendCommandInput, _ ...func(*ssm.Options)) (*ssm.SendCommandOutput, error) {
	f.sends = append(f.sends, in)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendOutput, nil
}

func (f *fakeSSM) ListCommandInvocations(_ context.Context, _ *ssm.ListCommandInvocationsInput, _ ...func(*ssm.Options)) (*ssm.ListCommandInvocationsOutput, error) {
	if len(f.invocationPages) == 0 {
		return &ssm.ListCommandInvocationsOutput{}, nil
	}
	page := f.invocationPages[0]
	f.invocationPages = f.invocationPages[1:]
	return page, nil
}

func (f *fakeSSM) GetParameter(_ context.Context, _ *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.parameterErr != nil {
		return nil, f.parameterErr
	}
	return f.parameter, nil
}

type fakeS3 struct {
	pages   [][]string
	listErr error
	objects map[string]string

	listCalls int
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listCalls >= len(f.pages) {
		f.listCalls++
		if f.listErr != nil {
			return nil, f.listErr
		}
		return &s3.ListObjectsV2Output{}, nil
	}

	out := &s3.ListObjectsV2Output{}
	for _, k := range f.pages[f.listCalls] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	f.listCalls++
	if f.listCalls < len(f.pages) || f.listErr != nil {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

type fakeEC2 struct {
	output *ec2.DescribeInstancesOutput
	err    error
	input  *ec2.DescribeInstancesInput
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}
