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

// Package main contains the API route definitions for the server: chunked
// video upload, processing control, and result retrieval.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/videolens/go-video-insights/internal/core/model"
)

// processRequest is the JSON body accepted by the process endpoint. The only
// recognized processing option is "ai_insights"; others are accepted and
// ignored.
type processRequest struct {
	UploadID          string   `json:"upload_id" binding:"required"`
	IntervalSeconds   float64  `json:"interval_seconds"`
	ProcessingOptions []string `json:"processing_options"`
}

// VideoRouter registers the video upload and processing endpoints under the
// given group.
func VideoRouter(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		// Receive one chunk of a video. The first chunk without an upload_id
		// opens a new session under a generated id; the response always
		// carries the id the client must use for the remaining chunks.
		videos.POST("/upload", func(c *gin.Context) {
			chunkNumber, err := strconv.Atoi(c.PostForm("chunk_number"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "chunk_number must be an integer"})
				return
			}
			totalChunks, err := strconv.Atoi(c.PostForm("total_chunks"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "total_chunks must be an integer"})
				return
			}
			uploadID := c.PostForm("upload_id")
			if uploadID == "" {
				uploadID = uuid.NewString()
			}

			fileHeader, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing chunk file"})
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable chunk file"})
				return
			}
			defer func() { _ = file.Close() }()

			result, err := state.chunkStore.PutChunk(uploadID, chunkNumber, totalChunks, file)
			if err != nil {
				writeError(c, err)
				return
			}

			status := "partial"
			if result.Status == model.StatusAssembled {
				status = "completed"
			}
			c.JSON(http.StatusOK, gin.H{
				"upload_id":             result.UploadID,
				"status":                status,
				"chunks_received":       result.ChunksReceived,
				"total_chunks_expected": result.TotalExpected,
			})
		})

		// Start background processing for an assembled upload.
		videos.POST("/process", func(c *gin.Context) {
			var req processRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "upload_id is required"})
				return
			}

			job, err := state.pipeline.Start(req.UploadID, req.IntervalSeconds, req.ProcessingOptions)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"status":    "processing_started",
				"upload_id": req.UploadID,
				"stage":     job.Stage(),
			})
		})

		// Report upload and processing state for an id.
		videos.GET("/:id/status", func(c *gin.Context) {
			id := c.Param("id")
			session, err := state.chunkStore.Status(id)
			if err != nil {
				writeError(c, err)
				return
			}

			out := gin.H{
				"upload_id":             session.ID,
				"upload_status":         session.Status,
				"chunks_received":       len(session.Received),
				"total_chunks_expected": session.TotalExpected,
			}
			if job, err := state.pipeline.Status(id); err == nil {
				out["processing_stage"] = job.Stage
				if job.Error != "" {
					out["processing_error"] = job.Error
				}
			}
			c.JSON(http.StatusOK, out)
		})

		// Request cancellation of a running job.
		videos.POST("/:id/cancel", func(c *gin.Context) {
			id := c.Param("id")
			if err := state.pipeline.Cancel(id); err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"status": "cancel_requested", "upload_id": id})
		})

		// Fetch the persisted result document.
		videos.GET("/:id/results", func(c *gin.Context) {
			id := c.Param("id")
			doc, err := state.pipeline.Results(id)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, doc)
		})
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownUpload):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrPipelineFatal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrStorage):
		slog.Error("storage failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
