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
	"fmt"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zhengshuai-xiao/XferS/internal"
)

type minioSegments struct {
	client *miniogo.Core
	bucket string
}

// NewMinioBackend connects to an S3-compatible endpoint with minio-go and
// creates the bucket if it does not exist yet.
func NewMinioBackend(ctx context.Context, conf *internal.Config) (*SegmentBackend, error) {
	core, err := miniogo.NewCore(conf.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: !conf.NoSSL,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("client initialization failed: %w", err)
	}
	if err := ensureBucket(ctx, core.Client, conf.Bucket); err != nil {
		return nil, err
	}
	logger.Infof("Using minio backend %s/%s", conf.Endpoint, conf.Bucket)
	return newSegmentBackend(&minioSegments{client: core, bucket: conf.Bucket}), nil
}

func ensureBucket(ctx context.Context, client *miniogo.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Infof("Bucket %s created successfully", bucketName)
	}
	return nil
}

func (m *minioSegments) String() string {
	return fmt.Sprintf("minio://%s/%s", m.client.EndpointURL().Host, m.bucket)
}

func (m *minioSegments) putSegment(ctx context.Context, key string, p []byte) error {
	opts := miniogo.PutObjectOptions{ContentType: "application/octet-stream"}
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(p), int64(len(p)), "", "", opts)
	return err
}

func (m *minioSegments) getSegment(ctx context.Context, key string, off, length int64) ([]byte, error) {
	opts := miniogo.GetObjectOptions{}
	if err := opts.SetRange(off, off+length-1); err != nil {
		return nil, err
	}
	rc, _, _, err := m.client.GetObject(ctx, m.bucket, key, opts)
	if err != nil {
		if miniogo.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, notFound(key)
		}
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, length)
	n, err := io.ReadFull(rc, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func (m *minioSegments) listSegments(ctx context.Context, prefix string) ([]segmentInfo, error) {
	var segs []segmentInfo
	// Core.ListObjects is the raw v1 call; the embedded Client walks all pages.
	for obj := range m.client.Client.ListObjects(ctx, m.bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		segs = append(segs, segmentInfo{key: obj.Key, size: obj.Size, modTime: obj.LastModified})
	}
	return segs, nil
}
