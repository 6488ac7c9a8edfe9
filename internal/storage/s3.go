// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores files in a single S3-compatible bucket. It wraps the AWS SDK
// v2 and is configured for path-style access (required by CEPH/Hetzner).
type S3 struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for stored files
}

// NewS3 creates an S3 storage backend configured for CEPH/Hetzner with
// path-style addressing and static credentials.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("s3 storage: endpoint and credentials are required")
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put uploads the content under a fresh object key and returns its
// reference. Objects are set to public-read ACL so they can be served
// directly from the bucket or a CDN in front of it.
func (c *S3) Put(ctx context.Context, category, filename, contentType string, r io.Reader, size int64) (FileRef, error) {
	key := objectKey(category, filename)

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("s3 put %s/%s: %w", c.bucket, key, err)
	}

	return FileRef{Key: key, URL: c.fileURL(key)}, nil
}

// Delete removes an object from the bucket. S3 DeleteObject succeeds for
// keys that do not exist, which gives this backend its idempotency.
func (c *S3) Delete(ctx context.Context, ref FileRef) error {
	if ref.Zero() {
		return nil
	}

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, ref.Key, err)
	}
	return nil
}

// fileURL returns the public URL for a stored key. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *S3) fileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}
