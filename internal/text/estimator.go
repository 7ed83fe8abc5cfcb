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

// Package text holds the lexical stages of the pipeline: token estimation,
// budget-bound segmentation, and near-duplicate removal of OCR output.
package text

import "strings"

// charsPerToken approximates the average token width of English text as
// produced by common generative model tokenizers.
const charsPerToken = 4

// EstimateWordTokens returns the token estimate for a single word: one token
// per four characters, with a floor of one token per word. Deterministic and
// purely local, so callers can budget segments without a tokenizer round trip.
func EstimateWordTokens(word string) int {
	if word == "" {
		return 0
	}
	n := (len(word) + charsPerToken - 1) / charsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateTokens returns the token estimate for a block of text. The estimate
// is the sum of the per-word estimates over whitespace-separated words, so
// splitting text on word boundaries never changes the total.
func EstimateTokens(s string) int {
	total := 0
	for _, word := range strings.Fields(s) {
		total += EstimateWordTokens(word)
	}
	return total
}
