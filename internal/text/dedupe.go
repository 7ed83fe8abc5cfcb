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

package text

import (
	"strings"
	"unicode"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// Deduplicator removes consecutive runs of frames whose extracted text is the
// same on-screen content. OCR of a static slide yields near-identical text
// for many frames in a row; only the first frame of each run is worth
// enriching.
//
// Texts are compared after normalization (lowercased, punctuation stripped,
// whitespace collapsed). With a similarity threshold of 1.0 only exact
// normalized matches are dropped; below 1.0, a frame is also dropped when the
// Jaccard similarity of its word set against the previous kept frame meets
// the threshold, which absorbs single-word OCR flicker.
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a Deduplicator. The threshold is clamped to
// (0, 1]; values at or below zero fall back to exact matching.
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = 1.0
	}
	return &Deduplicator{threshold: threshold}
}

// normalize lowercases, strips every rune that is not a letter, digit, or
// space, and collapses whitespace runs to single spaces.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// jaccard returns the word-set Jaccard similarity of two normalized texts.
func jaccard(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, w := range strings.Fields(b) {
		setB[w] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// duplicate reports whether two normalized texts are the same content under
// the configured threshold.
func (d *Deduplicator) duplicate(prev, next string) bool {
	if prev == next {
		return true
	}
	if d.threshold >= 1.0 {
		return false
	}
	return jaccard(prev, next) >= d.threshold
}

// Dedupe returns the units whose text differs from the previously kept unit,
// preserving input order. Units whose text normalizes to empty are dropped
// outright. The first unit of each run survives, so re-running Dedupe on its
// own output returns it unchanged.
func (d *Deduplicator) Dedupe(units []*model.TextUnit) []*model.TextUnit {
	kept := make([]*model.TextUnit, 0, len(units))
	prev := ""
	for _, unit := range units {
		norm := normalize(unit.Text)
		if norm == "" {
			continue
		}
		if len(kept) > 0 && d.duplicate(prev, norm) {
			continue
		}
		kept = append(kept, unit)
		prev = norm
	}
	return kept
}
