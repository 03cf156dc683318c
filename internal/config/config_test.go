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

package config

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var (
		tempDir    string
		configFile string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
		configFile = filepath.Join(tempDir, "config.yaml")
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("when config file exists with valid content", func() {
			BeforeEach(func() {
				validConfig := `
storage:
  type: "object-store"
  bucket: "exposure-artifacts"
  prefix: "batches/"
  encryption: "AES256"

retry:
  max_retries: 5
  backoff_schedule: ["10s", "30s", "60s", "5m", "10m"]

rules:
  cache_across_batches: true

coordinator:
  stale_event_threshold: "24h"
  report_format: "pdf"

batch:
  timeout: "30m"

quality:
  weights:
    completeness: 0.2
    accuracy: 0.2
    consistency: 0.15
    timeliness: 0.15
    validity: 0.15
    uniqueness: 0.15

server:
  webhook_port: "8080"
  metrics_port: "9090"

logging:
  level: "info"
  format: "json"
`
				err := os.WriteFile(configFile, []byte(validConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				config, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(config).NotTo(BeNil())

				Expect(config.Storage.Type).To(Equal("object-store"))
				Expect(config.Storage.Bucket).To(Equal("exposure-artifacts"))
				Expect(config.Storage.Encryption).To(Equal("AES256"))

				Expect(config.Retry.MaxRetries).To(Equal(5))
				Expect(config.Retry.BackoffSchedule).To(HaveLen(5))
				Expect(config.Retry.BackoffSchedule[0]).To(Equal(10 * time.Second))

				Expect(config.Rules.CacheAcrossBatches).To(BeTrue())

				Expect(config.Coordinator.StaleEventThreshold).To(Equal(24 * time.Hour))
				Expect(config.Coordinator.ReportFormat).To(Equal("pdf"))

				Expect(config.Batch.Timeout).To(Equal(30 * time.Minute))

				Expect(config.Quality.Weights).To(HaveLen(6))
				Expect(config.Quality.Weights["completeness"]).To(Equal(0.2))

				Expect(config.Server.WebhookPort).To(Equal("8080"))
				Expect(config.Server.MetricsPort).To(Equal("9090"))

				Expect(config.Logging.Level).To(Equal("info"))
				Expect(config.Logging.Format).To(Equal("json"))
			})
		})

		Context("when config file has minimal content", func() {
			BeforeEach(func() {
				minimalConfig := `
storage:
  type: "local"
  local_path: "/tmp/exposure-artifacts"
`
				err := os.WriteFile(configFile, []byte(minimalConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load with defaults for missing values", func() {
				config, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())

				Expect(config.Storage.Type).To(Equal("local"))
				Expect(config.Retry.MaxRetries).To(Equal(5))
				Expect(config.Retry.BackoffSchedule).To(HaveLen(5))
				Expect(config.Batch.Timeout).To(Equal(30 * time.Minute))
				Expect(config.Quality.Weights).To(HaveLen(6))
				Expect(config.Coordinator.ReportFormat).To(Equal("pdf"))
			})
		})

		Context("when config file does not exist", func() {
			It("should return an error", func() {
				_, err := Load("/nonexistent/config.yaml")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to read config file"))
			})
		})

		Context("when config file has invalid YAML", func() {
			BeforeEach(func() {
				invalidConfig := `
storage:
  type: "local"
  invalid_yaml: [
retry:
  max_retries: 5
`
				err := os.WriteFile(configFile, []byte(invalidConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
			})
		})

		Context("when the storage bucket is missing for object-store type", func() {
			BeforeEach(func() {
				badConfig := `
storage:
  type: "object-store"
`
				err := os.WriteFile(configFile, []byte(badConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("storage bucket is required"))
			})
		})
	})

	Describe("validate", func() {
		var config *Config

		BeforeEach(func() {
			config = &Config{
				Storage: StorageConfig{Type: "local", LocalPath: "/tmp/data"},
				Retry:   RetryConfig{MaxRetries: 5, BackoffSchedule: defaultBackoffSchedule},
				Batch:   BatchConfig{Timeout: 30 * time.Minute},
				Quality: QualityConfig{Weights: map[string]float64{
					"completeness": 1.0 / 6, "accuracy": 1.0 / 6, "consistency": 1.0 / 6,
					"timeliness": 1.0 / 6, "validity": 1.0 / 6, "uniqueness": 1.0 / 6,
				}},
				Coordinator: CoordinatorConfig{ReportFormat: "pdf"},
			}
		})

		Context("when config is valid", func() {
			It("should pass validation", func() {
				err := validate(config)
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("when storage type is invalid", func() {
			BeforeEach(func() {
				config.Storage.Type = "ftp"
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unsupported storage type"))
			})
		})

		Context("when max retries is zero", func() {
			BeforeEach(func() {
				config.Retry.MaxRetries = 0
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("retry max retries must be greater than 0"))
			})
		})

		Context("when batch timeout is zero", func() {
			BeforeEach(func() {
				config.Batch.Timeout = 0
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("batch timeout must be greater than 0"))
			})
		})

		Context("when quality weights do not sum to 1.0", func() {
			BeforeEach(func() {
				config.Quality.Weights = map[string]float64{"completeness": 0.5, "accuracy": 0.2}
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("quality weights must sum to 1.0"))
			})
		})

		Context("when coordinator report format is unsupported", func() {
			BeforeEach(func() {
				config.Coordinator.ReportFormat = "docx"
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unsupported coordinator report format"))
			})
		})
	})

	Describe("loadFromEnv", func() {
		var config *Config

		BeforeEach(func() {
			config = &Config{}
			os.Clearenv()
		})

		Context("when environment variables are set", func() {
			BeforeEach(func() {
				os.Setenv("STORAGE_TYPE", "local")
				os.Setenv("WEBHOOK_PORT", "3000")
				os.Setenv("METRICS_PORT", "9999")
				os.Setenv("LOG_LEVEL", "debug")
				os.Setenv("DB_HOST", "db.internal")
				os.Setenv("DB_PORT", "5433")
			})

			AfterEach(func() {
				os.Clearenv()
			})

			It("should load values from environment", func() {
				err := loadFromEnv(config)
				Expect(err).NotTo(HaveOccurred())

				Expect(config.Storage.Type).To(Equal("local"))
				Expect(config.Server.WebhookPort).To(Equal("3000"))
				Expect(config.Server.MetricsPort).To(Equal("9999"))
				Expect(config.Logging.Level).To(Equal("debug"))
				Expect(config.Database.Host).To(Equal("db.internal"))
				Expect(config.Database.Port).To(Equal(5433))
			})
		})

		Context("when no environment variables are set", func() {
			It("should not modify config", func() {
				originalConfig := *config
				err := loadFromEnv(config)
				Expect(err).NotTo(HaveOccurred())
				Expect(*config).To(Equal(originalConfig))
			})
		})

		Context("when DB_PORT is not numeric", func() {
			BeforeEach(func() {
				os.Setenv("DB_PORT", "not-a-port")
			})

			AfterEach(func() {
				os.Clearenv()
			})

			It("should return an error", func() {
				err := loadFromEnv(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("invalid DB_PORT"))
			})
		})
	})
})
