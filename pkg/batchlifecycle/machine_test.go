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

package batchlifecycle

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

func TestBatchLifecycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Batch Lifecycle Suite")
}

func newBatch(status domain.Status) *domain.Batch {
	return &domain.Batch{
		BatchID:    "batch-1",
		BankID:     "08081",
		Status:     status,
		UploadedAt: time.Now().UTC(),
	}
}

var _ = Describe("Machine", func() {
	var m *Machine

	BeforeEach(func() {
		m = NewMachine()
	})

	DescribeTable("legal edges succeed and illegal edges fail",
		func(from, to domain.Status, wantErr bool) {
			b := newBatch(from)
			if to != domain.StatusFailed {
				b.ObjectRef = &domain.ObjectRef{Bucket: "b", Key: "k"}
			}
			err := m.Apply(b, to)
			if wantErr {
				Expect(err).ToNot(BeNil())
				Expect(err.Type).To(Equal(apperrors.ErrorTypeInvalidTransition))
			} else {
				Expect(err).To(BeNil())
				Expect(b.Status).To(Equal(to))
			}
		},
		Entry("UPLOADED -> PARSING", domain.StatusUploaded, domain.StatusParsing, false),
		Entry("PARSING -> VALIDATED", domain.StatusParsing, domain.StatusValidated, false),
		Entry("PARSING -> FAILED", domain.StatusParsing, domain.StatusFailed, false),
		Entry("VALIDATED -> STORING", domain.StatusValidated, domain.StatusStoring, false),
		Entry("STORING -> COMPLETED", domain.StatusStoring, domain.StatusCompleted, false),
		Entry("UPLOADED -> VALIDATED (skips PARSING)", domain.StatusUploaded, domain.StatusValidated, true),
		Entry("COMPLETED -> PARSING (terminal)", domain.StatusCompleted, domain.StatusParsing, true),
		Entry("FAILED -> PARSING (terminal)", domain.StatusFailed, domain.StatusParsing, true),
		Entry("UPLOADED -> UPLOADED (no self edge)", domain.StatusUploaded, domain.StatusUploaded, true),
	)

	It("requires objectRef past UPLOADED on non-FAILED edges", func() {
		b := newBatch(domain.StatusUploaded)
		Expect(m.Apply(b, domain.StatusParsing)).To(BeNil())

		b.ObjectRef = nil
		err := m.Apply(b, domain.StatusValidated)
		Expect(err).ToNot(BeNil())
		Expect(b.Status).To(Equal(domain.StatusParsing))
	})

	It("does not require objectRef to transition into FAILED", func() {
		b := newBatch(domain.StatusParsing)
		err := m.Apply(b, domain.StatusFailed)
		Expect(err).To(BeNil())
		Expect(b.Status).To(Equal(domain.StatusFailed))
		Expect(b.FailedAt).ToNot(BeNil())
	})

	It("sets CompletedAt and ProcessingDurationMs on COMPLETED", func() {
		b := newBatch(domain.StatusStoring)
		b.ObjectRef = &domain.ObjectRef{Bucket: "b", Key: "k"}
		b.UploadedAt = time.Now().UTC().Add(-time.Minute)

		Expect(m.Apply(b, domain.StatusCompleted)).To(BeNil())
		Expect(b.CompletedAt).ToNot(BeNil())
		Expect(b.ProcessingDurationMs).To(BeNumerically(">=", 0))
	})

	It("rejects a negative exposureCount past UPLOADED", func() {
		b := newBatch(domain.StatusValidated)
		b.ObjectRef = &domain.ObjectRef{Bucket: "b", Key: "k"}
		b.ExposureCount = -1

		err := m.Apply(b, domain.StatusStoring)
		Expect(err).ToNot(BeNil())
	})

	Describe("ValidateTransition", func() {
		It("does not mutate the batch", func() {
			b := newBatch(domain.StatusUploaded)
			err := m.ValidateTransition(b, domain.StatusParsing)
			Expect(err).To(BeNil())
			Expect(b.Status).To(Equal(domain.StatusUploaded))
		})
	})
})
