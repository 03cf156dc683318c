/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package s3 implements objectstore.Gateway over an S3-compatible bucket,
// used when storage.type=object-store. Every call is wrapped in a circuit
// breaker plus exponential backoff so a flaky object store degrades a
// single batch instead of the whole pipeline.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore"
)

// Config configures the S3-backed Gateway.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	// Encryption selects the server-side encryption mode applied to every
	// PutObject call; spec.md §4.2 mandates AES-256 at minimum.
	Encryption types.ServerSideEncryption
	MaxRetries uint
}

// DefaultConfig returns a Config with AES-256 SSE and three retry attempts.
func DefaultConfig(bucket string) Config {
	return Config{
		Bucket:     bucket,
		Encryption: types.ServerSideEncryptionAes256,
		MaxRetries: 3,
	}
}

// Gateway implements objectstore.Gateway against an S3-compatible bucket.
type Gateway struct {
	client  *s3.Client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

var _ objectstore.Gateway = (*Gateway)(nil)

// NewGateway loads the AWS SDK default credential chain and builds a
// Gateway for cfg.
func NewGateway(ctx context.Context, cfg Config) (*Gateway, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to load AWS config")
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	breakerSettings := gobreaker.Settings{
		Name:        "objectstore-s3",
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Gateway{
		client:  s3.NewFromConfig(awsCfg, s3Opts...),
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(breakerSettings),
	}, nil
}

// PutObject verifies meta's checksums, then uploads content single-part
// (≤100 MiB) or multipart with 5 MiB parts and abort-on-failure (spec.md
// §4.2), wrapped in the circuit breaker and a retry.
func (g *Gateway) PutObject(ctx context.Context, key string, content []byte, meta objectstore.Metadata) (objectstore.ObjectRef, error) {
	if err := objectstore.VerifyChecksums(content, meta); err != nil {
		return objectstore.ObjectRef{}, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx, func() (*s3.PutObjectOutput, error) {
			if len(content) > objectstore.MultipartThresholdBytes {
				return g.putMultipart(ctx, key, content, meta)
			}
			return g.putSinglePart(ctx, key, content, meta)
		}, backoff.WithMaxTries(3))
	})
	if err != nil {
		return objectstore.ObjectRef{}, apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to put object %s", key)
	}

	out := result.(*s3.PutObjectOutput)
	versionID := ""
	if out.VersionId != nil {
		versionID = *out.VersionId
	}
	return objectstore.ObjectRef{Bucket: g.cfg.Bucket, Key: key, VersionID: versionID}, nil
}

func (g *Gateway) putSinglePart(ctx context.Context, key string, content []byte, meta objectstore.Metadata) (*s3.PutObjectOutput, error) {
	input := &s3.PutObjectInput{
		Bucket:               aws.String(g.cfg.Bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(content),
		ServerSideEncryption: g.cfg.Encryption,
	}
	if meta.ContentType != "" {
		input.ContentType = aws.String(meta.ContentType)
	}
	return g.client.PutObject(ctx, input)
}

// putMultipart uploads content in 5 MiB parts, aborting the upload on the
// first part failure.
func (g *Gateway) putMultipart(ctx context.Context, key string, content []byte, meta objectstore.Metadata) (*s3.PutObjectOutput, error) {
	created, err := g.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:               aws.String(g.cfg.Bucket),
		Key:                  aws.String(key),
		ServerSideEncryption: g.cfg.Encryption,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart upload: %w", err)
	}
	uploadID := created.UploadId

	var parts []types.CompletedPart
	partNumber := int32(1)
	for offset := 0; offset < len(content); offset += objectstore.MultipartPartSizeBytes {
		end := offset + objectstore.MultipartPartSizeBytes
		if end > len(content) {
			end = len(content)
		}
		uploaded, err := g.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(g.cfg.Bucket),
			Key:        aws.String(key),
			UploadId:   uploadID,
			PartNumber: aws.Int32(partNumber),
			Body:       bytes.NewReader(content[offset:end]),
		})
		if err != nil {
			_, _ = g.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
				Bucket: aws.String(g.cfg.Bucket), Key: aws.String(key), UploadId: uploadID,
			})
			return nil, fmt.Errorf("failed to upload part %d: %w", partNumber, err)
		}
		parts = append(parts, types.CompletedPart{ETag: uploaded.ETag, PartNumber: aws.Int32(partNumber)})
		partNumber++
	}

	completed, err := g.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(g.cfg.Bucket),
		Key:             aws.String(key),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete multipart upload: %w", err)
	}
	return &s3.PutObjectOutput{VersionId: completed.VersionId}, nil
}

// GetObject downloads the object located by ref, wrapped in the circuit
// breaker and a retry.
func (g *Gateway) GetObject(ctx context.Context, ref objectstore.ObjectRef) ([]byte, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx, func() ([]byte, error) {
			out, err := g.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(g.cfg.Bucket),
				Key:    aws.String(ref.Key),
			})
			if err != nil {
				return nil, err
			}
			defer out.Body.Close()
			return io.ReadAll(out.Body)
		}, backoff.WithMaxTries(3))
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to get object %s", ref.Key)
	}
	return result.([]byte), nil
}

// PresignGet returns a presigned GET URL for ref with an absolute expiry
// ttl from now.
func (g *Gateway) PresignGet(ctx context.Context, ref objectstore.ObjectRef, ttl time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(g.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.cfg.Bucket),
		Key:    aws.String(ref.Key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to presign object %s", ref.Key)
	}
	return req.URL, nil
}
