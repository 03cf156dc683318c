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

// Package notification delivers operator-facing alerts — currently the
// failure queue's (C11) dead-letter notice — to an external channel.
package notification

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
)

// Alerter notifies an operator that an event exhausted its retries.
type Alerter interface {
	AlertDeadLetter(ctx context.Context, failureID, eventType string, retryCount int, lastError string) error
}

// SlackAlerter posts a dead-letter notice to a fixed Slack channel.
type SlackAlerter struct {
	client  *slack.Client
	channel string
}

// NewSlackAlerter builds a SlackAlerter. token is a bot token with
// chat:write scope; channel is the channel ID or name to post to.
func NewSlackAlerter(token, channel string) *SlackAlerter {
	return &SlackAlerter{client: slack.New(token), channel: channel}
}

var _ Alerter = (*SlackAlerter)(nil)

// AlertDeadLetter posts a dead-letter notice for an event that exhausted
// its retry budget.
func (a *SlackAlerter) AlertDeadLetter(ctx context.Context, failureID, eventType string, retryCount int, lastError string) error {
	text := deadLetterMessage(failureID, eventType, retryCount, lastError)
	_, _, err := a.client.PostMessageContext(ctx, a.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to post slack dead-letter alert")
	}
	return nil
}

// deadLetterMessage formats the operator-facing alert body, split out so
// its content can be checked without a live Slack connection.
func deadLetterMessage(failureID, eventType string, retryCount int, lastError string) string {
	return fmt.Sprintf(
		":rotating_light: Event processing permanently failed\n*Failure ID:* %s\n*Event type:* %s\n*Retries exhausted:* %d\n*Last error:* %s",
		failureID, eventType, retryCount, lastError,
	)
}
