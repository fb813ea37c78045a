package aws_s3

import (
	"bytes"
	"context"

	"github.com/haierkeys/idea-inbox-service/pkg/fileurl"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// SendContent 上传内容
func (p *S3) SendContent(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	key = fileurl.ObjectKey(p.Config.CustomPath, key)

	input := &transfermanager.UploadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := p.TransferManager.UploadObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}
	return key, nil
}

func (p *S3) Delete(ctx context.Context, key string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileurl.ObjectKey(p.Config.CustomPath, key)),
	})
	return errors.Wrap(err, "aws_s3")
}
