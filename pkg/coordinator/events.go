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

package coordinator

import (
	"encoding/json"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// joinedEventPayload is what the failure queue replays if report
// generation needs to be retried by an operator: both halves of the join
// that produced the failure.
type joinedEventPayload struct {
	Quality     domain.BatchQualityCompleted     `json:"quality"`
	Calculation domain.BatchCalculationCompleted `json:"calculation"`
}

func marshalJoinedEvents(quality domain.BatchQualityCompleted, calculation domain.BatchCalculationCompleted) ([]byte, error) {
	return json.Marshal(joinedEventPayload{Quality: quality, Calculation: calculation})
}
