// Copyright 2025 zhengshuai.xiao@outlook.com
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/zhengshuai-xiao/XferS/internal"
)

type awsSegments struct {
	client   *s3.Client
	endpoint string
	bucket   string
}

// awsEndpoint turns host:port into a URL; the AWS SDK wants a scheme.
func awsEndpoint(endpoint string, noSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if noSSL {
		return "http://" + endpoint
	}
	return "https://" + endpoint
}

// NewAWSBackend uses the AWS SDK with path-style addressing, which works for
// AWS itself as well as MinIO, Ceph RGW and other S3-compatible stores.
// Without an access key the SDK default credential chain is used.
func NewAWSBackend(ctx context.Context, conf *internal.Config) (*SegmentBackend, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
	}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := awsEndpoint(conf.Endpoint, conf.NoSSL)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(conf.Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %s is not accessible: %w", conf.Bucket, err)
	}
	logger.Infof("Using s3 backend %s/%s", endpoint, conf.Bucket)
	return newSegmentBackend(&awsSegments{client: client, endpoint: endpoint, bucket: conf.Bucket}), nil
}

func (a *awsSegments) String() string {
	return fmt.Sprintf("s3://%s/%s", a.endpoint, a.bucket)
}

func (a *awsSegments) putSegment(ctx context.Context, key string, p []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(p),
		ContentLength: aws.Int64(int64(len(p))),
		ContentType:   aws.String("application/octet-stream"),
	})
	return err
}

func (a *awsSegments) getSegment(ctx context.Context, key string, off, length int64) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, off+length-1)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFound(key)
		}
		return nil, err
	}
	defer out.Body.Close()

	buf := make([]byte, length)
	n, err := io.ReadFull(out.Body, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func (a *awsSegments) listSegments(ctx context.Context, prefix string) ([]segmentInfo, error) {
	var segs []segmentInfo
	p := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			segs = append(segs, segmentInfo{
				key:     aws.ToString(obj.Key),
				size:    aws.ToInt64(obj.Size),
				modTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return segs, nil
}
