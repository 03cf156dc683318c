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

package ingestion

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// batchResponse is the wire shape shared by submitBatch and
// getBatchStatus (spec.md §6).
type batchResponse struct {
	BatchID       string              `json:"batchId"`
	Status        domain.Status       `json:"status"`
	ObjectRef     *domain.ObjectRef   `json:"objectRef,omitempty"`
	FileMetadata  domain.FileMetadata `json:"fileMetadata"`
	ExposureCount int                 `json:"exposureCount"`
	UploadedAt    string              `json:"uploadedAt"`
	CompletedAt   *string             `json:"completedAt,omitempty"`
	ErrorMessage  string              `json:"errorMessage,omitempty"`
}

func toBatchResponse(b *domain.Batch) batchResponse {
	resp := batchResponse{
		BatchID:       b.BatchID,
		Status:        b.Status,
		ObjectRef:     b.ObjectRef,
		FileMetadata:  b.FileMetadata,
		ExposureCount: b.ExposureCount,
		UploadedAt:    b.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ErrorMessage:  b.ErrorMessage,
	}
	if b.CompletedAt != nil {
		formatted := b.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &formatted
	}
	return resp
}

// NewRouter builds the chi router serving spec.md §6's two mandatory
// inbound operations over HTTP.
func NewRouter(pipeline *Pipeline, log *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Post("/batches", submitBatchHandler(pipeline, log))
	r.Get("/batches/{batchId}", getBatchStatusHandler(pipeline, log))

	return r
}

// submitBatchHandler implements submitBatch(bankId, fileStream, fileName,
// contentType): bankId and fileName arrive as query parameters (a bank's
// upload agent sets them alongside the raw file body), contentType is the
// request's Content-Type header.
func submitBatchHandler(pipeline *Pipeline, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bankID := r.URL.Query().Get("bankId")
		fileName := r.URL.Query().Get("fileName")
		contentType := r.Header.Get("Content-Type")

		content, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, log, apperrors.NewValidationError("failed to read upload body"))
			return
		}

		batch, err := pipeline.SubmitBatch(r.Context(), bankID, fileName, contentType, content)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusAccepted, toBatchResponse(batch))
	}
}

func getBatchStatusHandler(pipeline *Pipeline, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID := chi.URLParam(r, "batchId")
		batch, err := pipeline.GetBatchStatus(r.Context(), batchID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toBatchResponse(batch))
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var appErr *apperrors.AppError
	status := http.StatusInternalServerError
	message := "internal error"
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	} else {
		log.Error("unhandled ingestion error", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": message})
}
