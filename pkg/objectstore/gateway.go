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

// Package objectstore implements the object store gateway (C2): a single
// contract for putting, getting, and presigning raw uploads and derived
// report artifacts, backed by either an S3-compatible store or the local
// filesystem per storage.type.
package objectstore

import (
	"context"
	"fmt"
	"time"
)

// MultipartThresholdBytes is the size above which PutObject uses a
// multipart upload (spec.md §4.2).
const MultipartThresholdBytes = 100 * 1024 * 1024

// MultipartPartSizeBytes is the size of each part in a multipart upload.
const MultipartPartSizeBytes = 5 * 1024 * 1024

// Metadata carries the caller-supplied integrity hashes PutObject verifies
// against the uploaded content.
type Metadata struct {
	ExpectedMD5    string
	ExpectedSHA256 string
	ContentType    string
}

// ObjectRef locates a stored object. Mirrors domain.ObjectRef so gateway
// implementations do not need to import pkg/domain.
type ObjectRef struct {
	Bucket    string
	Key       string
	VersionID string
}

// Gateway is the object store contract shared by the S3-backed and local
// filesystem implementations.
type Gateway interface {
	// PutObject stores content under key, verifying it against meta's
	// expected hashes and returning the stored ObjectRef.
	PutObject(ctx context.Context, key string, content []byte, meta Metadata) (ObjectRef, error)
	// GetObject retrieves the content located by ref.
	GetObject(ctx context.Context, ref ObjectRef) ([]byte, error)
	// PresignGet returns a URL for ref good until an absolute expiry ttl
	// from now.
	PresignGet(ctx context.Context, ref ObjectRef, ttl time.Duration) (string, error)
}

// RawKey builds the inbound upload key for batchID/fileName (spec.md §4.2:
// "raw/{batchId}/{fileName}").
func RawKey(batchID, fileName string) string {
	return fmt.Sprintf("raw/%s/%s", batchID, fileName)
}

// DerivedKey builds the outbound result key for batchID/artifact (spec.md
// §4.2: "derived/{batchId}/{artifact}").
func DerivedKey(batchID, artifact string) string {
	return fmt.Sprintf("derived/%s/%s", batchID, artifact)
}
