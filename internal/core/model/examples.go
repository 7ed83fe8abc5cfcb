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

// This file provides factory functions for hardcoded example instances of
// the data models. The examples are embedded in prompts as "few-shot"
// guidance so the generative model returns JSON that is consistent,
// correctly shaped, and parsable.
package model

// GetExampleInsight creates a sample Insight used to show the model the
// expected JSON structure for a single analyzed text segment.
func GetExampleInsight() *Insight {
	return &Insight{
		Sentiment: "Positive",
		Keywords:  []string{"photosynthesis", "chlorophyll", "light energy", "glucose", "plant biology"},
		Summary: "The segment explains how plants convert light energy into chemical energy " +
			"through photosynthesis, highlighting the role of chlorophyll and the production " +
			"of glucose and oxygen.",
		Complexity: "Medium",
	}
}
