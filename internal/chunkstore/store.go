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

// Package chunkstore persists uploaded byte ranges keyed by (upload id,
// sequence number) and reassembles them into a single video file once every
// expected chunk has arrived.
//
// Chunk arrivals are concurrent and unordered. Each chunk is committed with a
// write-then-rename so no chunk file is ever observable half-written, and
// re-sending a sequence number overwrites the previous copy instead of
// duplicating it. Completion detection runs under the session lock, so
// exactly one writer triggers assembly even when the final chunks land
// simultaneously. Assembly concatenates chunks in ascending numeric sequence
// order; the assembled bytes depend only on sequence numbers, never on
// arrival order.
package chunkstore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// DefaultVideoMIMEType is used when the assembled bytes do not match a known
// container signature (for example tiny synthetic test uploads).
const DefaultVideoMIMEType = "video/mp4"

// PutResult reports the session state after one chunk write.
type PutResult struct {
	UploadID       string
	Status         model.SessionStatus
	ChunksReceived int
	TotalExpected  int
	Video          *model.AssembledVideo // Non-nil once the upload has been assembled.
}

// session pairs the bookkeeping record with the lock that serializes its
// mutation and the completion check.
type session struct {
	mu sync.Mutex
	model.UploadSession
	video *model.AssembledVideo
}

// Store manages chunked uploads on the local filesystem.
type Store struct {
	chunksRoot string
	videosRoot string

	mu       sync.Mutex // Guards the sessions map only; per-session state has its own lock.
	sessions map[string]*session
}

// NewStore creates a Store rooted at the given chunk and video directories.
func NewStore(chunksRoot, videosRoot string) *Store {
	return &Store{
		chunksRoot: chunksRoot,
		videosRoot: videosRoot,
		sessions:   make(map[string]*session),
	}
}

// validateUploadID rejects ids that would escape the storage roots once
// joined into a filesystem path.
func validateUploadID(uploadID string) error {
	if uploadID == "" {
		return fmt.Errorf("upload id must not be empty")
	}
	if strings.ContainsAny(uploadID, `/\`) || strings.Contains(uploadID, "..") {
		return fmt.Errorf("upload id %q must not contain path separators or '..'", uploadID)
	}
	return nil
}

// chunkPath returns the stable on-disk location for one chunk.
func (s *Store) chunkPath(uploadID string, seq int) string {
	return filepath.Join(s.chunksRoot, uploadID, fmt.Sprintf("chunk_%06d", seq))
}

// videoPath returns the destination of the assembled video for an upload.
func (s *Store) videoPath(uploadID string) string {
	return filepath.Join(s.videosRoot, uploadID+".mp4")
}

// getOrCreate returns the session for an upload id, creating it on the first
// chunk for an unseen id.
func (s *Store) getOrCreate(uploadID string, totalExpected int) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		sess = &session{UploadSession: model.UploadSession{
			ID:            uploadID,
			TotalExpected: totalExpected,
			Received:      make(map[int]struct{}),
			Status:        model.StatusReceiving,
		}}
		s.sessions[uploadID] = sess
		return sess, nil
	}
	if sess.TotalExpected != totalExpected {
		return nil, fmt.Errorf("upload %s declared %d total chunks, got %d", uploadID, sess.TotalExpected, totalExpected)
	}
	return sess, nil
}

// PutChunk writes one chunk and returns the resulting session state. The
// write is idempotent for a given (uploadID, seq) pair. When the chunk
// completes the expected set, PutChunk assembles the video before returning
// and the result carries the assembled video's location. Write failures wrap
// model.ErrStorage and leave the session receiving so the caller can re-send
// the same chunk. Ids carrying path separators or parent references are
// rejected; they never open a session or touch the filesystem.
func (s *Store) PutChunk(uploadID string, seq, totalExpected int, r io.Reader) (*PutResult, error) {
	if err := validateUploadID(uploadID); err != nil {
		return nil, err
	}
	if totalExpected < 1 {
		return nil, fmt.Errorf("total chunk count must be at least 1, got %d", totalExpected)
	}
	if seq < 1 || seq > totalExpected {
		return nil, fmt.Errorf("chunk number %d outside 1..%d", seq, totalExpected)
	}

	sess, err := s.getOrCreate(uploadID, totalExpected)
	if err != nil {
		return nil, err
	}

	if err := s.writeChunk(uploadID, seq, r); err != nil {
		return nil, err
	}

	// Record the chunk and decide, under the session lock, whether this
	// writer is the one that triggers assembly.
	sess.mu.Lock()
	sess.Received[seq] = struct{}{}
	received := len(sess.Received)
	trigger := false
	if received == sess.TotalExpected &&
		(sess.Status == model.StatusReceiving || sess.Status == model.StatusComplete) {
		sess.Status = model.StatusAssembling
		trigger = true
	}
	status := sess.Status
	sess.mu.Unlock()

	result := &PutResult{
		UploadID:       uploadID,
		Status:         status,
		ChunksReceived: received,
		TotalExpected:  totalExpected,
	}

	if !trigger {
		if status == model.StatusAssembled {
			sess.mu.Lock()
			result.Video = sess.video
			sess.mu.Unlock()
		}
		return result, nil
	}

	video, err := s.assemble(uploadID, totalExpected)

	sess.mu.Lock()
	if err != nil {
		// Assembly is retryable: the next chunk write for this upload
		// re-runs the completion check.
		sess.Status = model.StatusComplete
		sess.mu.Unlock()
		return nil, err
	}
	sess.Status = model.StatusAssembled
	sess.VideoPath = video.Path
	sess.video = video
	sess.mu.Unlock()

	result.Status = model.StatusAssembled
	result.Video = video
	return result, nil
}

// writeChunk commits one chunk atomically: the bytes are streamed into a
// temporary file in the session directory and renamed onto the stable chunk
// path only after a successful flush.
func (s *Store) writeChunk(uploadID string, seq int, r io.Reader) error {
	dir := filepath.Join(s.chunksRoot, uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating chunk directory for upload %s: %v", model.ErrStorage, uploadID, err)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf("chunk_%06d-*.part", seq))
	if err != nil {
		return fmt.Errorf("%w: creating chunk temp file: %v", model.ErrStorage, err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing chunk %d of upload %s: %v", model.ErrStorage, seq, uploadID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: closing chunk %d of upload %s: %v", model.ErrStorage, seq, uploadID, err)
	}
	if err := os.Rename(tmp.Name(), s.chunkPath(uploadID, seq)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: committing chunk %d of upload %s: %v", model.ErrStorage, seq, uploadID, err)
	}
	return nil
}

// assemble concatenates chunks 1..totalExpected in numeric order into the
// upload's video file. The output is written to a temporary file and renamed
// into place so a crashed assembly never leaves a truncated video behind.
func (s *Store) assemble(uploadID string, totalExpected int) (*model.AssembledVideo, error) {
	if err := os.MkdirAll(s.videosRoot, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating videos directory: %v", model.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.videosRoot, uploadID+"-*.part")
	if err != nil {
		return nil, fmt.Errorf("%w: creating assembly temp file: %v", model.ErrStorage, err)
	}

	var size int64
	for seq := 1; seq <= totalExpected; seq++ {
		chunk, err := os.Open(s.chunkPath(uploadID, seq))
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return nil, fmt.Errorf("%w: opening chunk %d of upload %s: %v", model.ErrStorage, seq, uploadID, err)
		}
		written, err := io.Copy(tmp, chunk)
		_ = chunk.Close()
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return nil, fmt.Errorf("%w: concatenating chunk %d of upload %s: %v", model.ErrStorage, seq, uploadID, err)
		}
		size += written
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: closing assembled video for upload %s: %v", model.ErrStorage, uploadID, err)
	}

	dest := s.videoPath(uploadID)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: committing assembled video for upload %s: %v", model.ErrStorage, uploadID, err)
	}

	mimeType := DefaultVideoMIMEType
	if kind, err := filetype.MatchFile(dest); err == nil && kind != filetype.Unknown {
		mimeType = kind.MIME.Value
	}

	slog.Info("assembled upload", "upload_id", uploadID, "path", dest, "size", size, "mime", mimeType)
	return &model.AssembledVideo{UploadID: uploadID, Path: dest, Size: size, MIMEType: mimeType}, nil
}

// Status returns a snapshot of the session for an upload id, or
// model.ErrUnknownUpload when the id has never been seen.
func (s *Store) Status(uploadID string) (*model.UploadSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrUnknownUpload
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snapshot := &model.UploadSession{
		ID:            sess.ID,
		TotalExpected: sess.TotalExpected,
		Received:      make(map[int]struct{}, len(sess.Received)),
		Status:        sess.Status,
		VideoPath:     sess.VideoPath,
	}
	for seq := range sess.Received {
		snapshot.Received[seq] = struct{}{}
	}
	return snapshot, nil
}

// AssembledVideo returns the assembled video for an upload. It returns
// model.ErrUnknownUpload for an unseen id and model.ErrPipelineFatal when
// the upload exists but has not finished assembling.
func (s *Store) AssembledVideo(uploadID string) (*model.AssembledVideo, error) {
	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrUnknownUpload
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.Status != model.StatusAssembled || sess.video == nil {
		return nil, fmt.Errorf("%w: upload %s has no assembled video (status %s)",
			model.ErrPipelineFatal, uploadID, sess.Status)
	}
	return sess.video, nil
}

// Cleanup removes the staged chunk files for an upload once they are no
// longer needed. The assembled video is left in place.
func (s *Store) Cleanup(uploadID string) error {
	if err := validateUploadID(uploadID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.chunksRoot, uploadID)); err != nil {
		return fmt.Errorf("%w: removing chunks for upload %s: %v", model.ErrStorage, uploadID, err)
	}
	return nil
}
