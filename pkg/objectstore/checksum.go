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

package objectstore

import (
	"crypto/md5" //nolint:gosec // integrity check against caller-supplied hash, not a security boundary
	"crypto/sha256"
	"encoding/hex"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
)

// VerifyChecksums recomputes MD5 and SHA-256 over content and compares them
// against meta's expected values, failing with CHECKSUM_MISMATCH if either
// is populated and does not match (spec.md §4.2).
func VerifyChecksums(content []byte, meta Metadata) *apperrors.AppError {
	if meta.ExpectedMD5 != "" {
		sum := md5.Sum(content) //nolint:gosec
		if hex.EncodeToString(sum[:]) != meta.ExpectedMD5 {
			return apperrors.NewChecksumMismatchError("MD5")
		}
	}
	if meta.ExpectedSHA256 != "" {
		sum := sha256.Sum256(content)
		if hex.EncodeToString(sum[:]) != meta.ExpectedSHA256 {
			return apperrors.NewChecksumMismatchError("SHA-256")
		}
	}
	return nil
}
