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

package domain

// CoordinationState is a batch's position in the report coordinator's
// dual-event join (C10).
type CoordinationState string

const (
	CoordinationAwaitingBoth        CoordinationState = "AWAITING_BOTH"
	CoordinationAwaitingQuality     CoordinationState = "AWAITING_QUALITY"
	CoordinationAwaitingCalculation CoordinationState = "AWAITING_CALCULATION"
	CoordinationJoined              CoordinationState = "JOINED"
	CoordinationStale               CoordinationState = "STALE"
	CoordinationIdempotentSkip      CoordinationState = "IDEMPOTENT_SKIP"
)

// CoordinationFilterReason explains why an incoming event never reached a
// state transition.
type CoordinationFilterReason string

const (
	FilterNone           CoordinationFilterReason = ""
	FilterInvalid        CoordinationFilterReason = "FILTERED_INVALID"
	FilterStale          CoordinationFilterReason = "FILTERED_STALE"
)
