// Copyright 2025 VideoLens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimitedModelSustainsConfiguredRate(t *testing.T) {
	m := NewRateLimitedModel(nil, "gemini", nil, 5)

	// The configured value is the sustained requests-per-second refill, not
	// just the burst size.
	assert.Equal(t, rate.Limit(5), m.limiter.Limit())
	assert.Equal(t, 5, m.limiter.Burst())
}
