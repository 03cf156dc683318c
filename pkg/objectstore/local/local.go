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

// Package local implements objectstore.Gateway over the local filesystem,
// used when storage.type=local (single-node deployments, tests).
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore"
)

// Gateway stores objects as plain files under root, one file per key with
// directories created as needed.
type Gateway struct {
	root   string
	bucket string
}

// NewGateway builds a Gateway rooted at root. bucket is a logical label
// only (the filesystem has no bucket concept) reported back in ObjectRefs
// so callers see a consistent shape regardless of backend.
func NewGateway(root, bucket string) *Gateway {
	return &Gateway{root: root, bucket: bucket}
}

var _ objectstore.Gateway = (*Gateway)(nil)

func (g *Gateway) path(key string) string {
	return filepath.Join(g.root, filepath.FromSlash(key))
}

// PutObject writes content to root/key after verifying meta's checksums.
func (g *Gateway) PutObject(_ context.Context, key string, content []byte, meta objectstore.Metadata) (objectstore.ObjectRef, error) {
	if err := objectstore.VerifyChecksums(content, meta); err != nil {
		return objectstore.ObjectRef{}, err
	}

	dest := g.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return objectstore.ObjectRef{}, apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to create directory for %s", key)
	}
	if err := os.WriteFile(dest, content, 0o640); err != nil {
		return objectstore.ObjectRef{}, apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to write object %s", key)
	}

	return objectstore.ObjectRef{Bucket: g.bucket, Key: key, VersionID: "1"}, nil
}

// GetObject reads the file located by ref.
func (g *Gateway) GetObject(_ context.Context, ref objectstore.ObjectRef) ([]byte, error) {
	content, err := os.ReadFile(g.path(ref.Key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.ErrorTypeNotFound, "object not found: "+ref.Key)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeSystem, "failed to read object %s", ref.Key)
	}
	return content, nil
}

// PresignGet returns a file:// URL with an embedded expiry annotation. The
// local backend has no real request signing; the returned URL exists so
// callers on storage.type=local exercise the same contract shape as S3.
func (g *Gateway) PresignGet(_ context.Context, ref objectstore.ObjectRef, ttl time.Duration) (string, error) {
	expiry := time.Now().Add(ttl).UTC().Format(time.RFC3339)
	return fmt.Sprintf("file://%s?expires=%s", g.path(ref.Key), expiry), nil
}
