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

package chunkstore_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolens/go-video-insights/internal/chunkstore"
	"github.com/videolens/go-video-insights/internal/core/model"
)

func newStore(t *testing.T) *chunkstore.Store {
	t.Helper()
	root := t.TempDir()
	return chunkstore.NewStore(filepath.Join(root, "chunks"), filepath.Join(root, "videos"))
}

func put(t *testing.T, s *chunkstore.Store, id string, seq, total int, data string) *chunkstore.PutResult {
	t.Helper()
	result, err := s.PutChunk(id, seq, total, strings.NewReader(data))
	require.NoError(t, err)
	return result
}

func TestPutChunkOutOfOrderAssembly(t *testing.T) {
	s := newStore(t)

	r := put(t, s, "u1", 2, 3, "bbb")
	assert.Equal(t, model.StatusReceiving, r.Status)
	assert.Equal(t, 1, r.ChunksReceived)

	r = put(t, s, "u1", 1, 3, "aaa")
	assert.Equal(t, model.StatusReceiving, r.Status)

	r = put(t, s, "u1", 3, 3, "ccc")
	require.Equal(t, model.StatusAssembled, r.Status)
	require.NotNil(t, r.Video)

	// Reassembly follows sequence numbers, not arrival order.
	content, err := os.ReadFile(r.Video.Path)
	require.NoError(t, err)
	assert.Equal(t, "aaabbbccc", string(content))
	assert.Equal(t, int64(9), r.Video.Size)
	assert.Equal(t, "u1", r.Video.UploadID)
}

func TestPutChunkResendIsIdempotent(t *testing.T) {
	s := newStore(t)

	put(t, s, "u1", 1, 2, "old-")
	put(t, s, "u1", 1, 2, "new-")
	r := put(t, s, "u1", 2, 2, "tail")

	require.Equal(t, model.StatusAssembled, r.Status)
	content, err := os.ReadFile(r.Video.Path)
	require.NoError(t, err)
	assert.Equal(t, "new-tail", string(content))
}

func TestPutChunkRejectsBadSequenceNumbers(t *testing.T) {
	s := newStore(t)

	_, err := s.PutChunk("u1", 0, 3, strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.PutChunk("u1", 4, 3, strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.PutChunk("u1", 1, 0, strings.NewReader("x"))
	assert.Error(t, err)
}

func TestPutChunkRejectsPathEscapingUploadIDs(t *testing.T) {
	root := t.TempDir()
	s := chunkstore.NewStore(filepath.Join(root, "chunks"), filepath.Join(root, "videos"))

	for _, id := range []string{"", "..", "../escape", "up/../../escape", "nested/id", `nested\id`} {
		_, err := s.PutChunk(id, 1, 2, strings.NewReader("x"))
		assert.Error(t, err, "id %q", id)
	}

	// A rejected id leaves nothing on disk, inside the roots or out.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, s.Cleanup("../escape"))
}

func TestPutChunkRejectsTotalMismatch(t *testing.T) {
	s := newStore(t)

	put(t, s, "u1", 1, 3, "a")
	_, err := s.PutChunk("u1", 2, 5, strings.NewReader("b"))
	assert.Error(t, err)
}

func TestPutChunkSingleChunkUpload(t *testing.T) {
	s := newStore(t)

	r := put(t, s, "solo", 1, 1, "whole file")
	require.Equal(t, model.StatusAssembled, r.Status)

	content, err := os.ReadFile(r.Video.Path)
	require.NoError(t, err)
	assert.Equal(t, "whole file", string(content))
}

func TestStatusTracksProgress(t *testing.T) {
	s := newStore(t)

	_, err := s.Status("missing")
	assert.ErrorIs(t, err, model.ErrUnknownUpload)

	put(t, s, "u1", 2, 3, "b")
	session, err := s.Status("u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceiving, session.Status)
	assert.Equal(t, 1, len(session.Received))
	assert.Equal(t, 3, session.TotalExpected)

	put(t, s, "u1", 1, 3, "a")
	put(t, s, "u1", 3, 3, "c")
	session, err = s.Status("u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssembled, session.Status)
	assert.NotEmpty(t, session.VideoPath)
}

func TestAssembledVideoLookup(t *testing.T) {
	s := newStore(t)

	_, err := s.AssembledVideo("missing")
	assert.ErrorIs(t, err, model.ErrUnknownUpload)

	put(t, s, "u1", 1, 2, "a")
	_, err = s.AssembledVideo("u1")
	assert.ErrorIs(t, err, model.ErrPipelineFatal)

	put(t, s, "u1", 2, 2, "b")
	video, err := s.AssembledVideo("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", video.UploadID)
}

func TestConcurrentChunksAssembleExactlyOnce(t *testing.T) {
	s := newStore(t)
	const total = 32

	var wg sync.WaitGroup
	results := make(chan *chunkstore.PutResult, total)
	for seq := 1; seq <= total; seq++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			r, err := s.PutChunk("cc", seq, total, strings.NewReader(fmt.Sprintf("%04d", seq)))
			if err != nil {
				t.Errorf("chunk %d: %v", seq, err)
				return
			}
			results <- r
		}(seq)
	}
	wg.Wait()
	close(results)

	assembled := 0
	for r := range results {
		if r.Video != nil {
			assembled++
		}
	}
	assert.Equal(t, 1, assembled, "exactly one writer should observe assembly")

	video, err := s.AssembledVideo("cc")
	require.NoError(t, err)
	content, err := os.ReadFile(video.Path)
	require.NoError(t, err)

	var want strings.Builder
	for seq := 1; seq <= total; seq++ {
		fmt.Fprintf(&want, "%04d", seq)
	}
	assert.Equal(t, want.String(), string(content))
}

func TestCleanupRemovesStagedChunks(t *testing.T) {
	s := newStore(t)

	r := put(t, s, "u1", 1, 1, "data")
	require.NoError(t, s.Cleanup("u1"))

	// The assembled video survives cleanup.
	_, err := os.Stat(r.Video.Path)
	assert.NoError(t, err)
}
