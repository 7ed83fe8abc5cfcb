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

// Package test provides utilities shared by the test suites: loading the
// test configuration once per run and producing sample pipeline data.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/videolens/go-video-insights/internal/config"
	"github.com/videolens/go-video-insights/internal/core/model"
)

// StateManager caches the test configuration so each test run loads the TOML
// files once.
type StateManager struct {
	config *config.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience for the common
// setup error checks.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at the test configuration files
// (configs/.env.toml overridden by configs/.env.test.toml).
func SetupOS() (err error) {
	err = os.Setenv(config.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(config.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		state.config = cfg
	}
	return state.config
}

// GetTestTextUnits returns a small frame-text sequence with a consecutive
// duplicate run, modeled on OCR output from a slide that stays on screen.
func GetTestTextUnits() []*model.TextUnit {
	return []*model.TextUnit{
		{FrameIndex: 0, FramePath: "frames/u1/frame_000000.png", Text: "Welcome to the Quarterly Review"},
		{FrameIndex: 1, FramePath: "frames/u1/frame_000001.png", Text: "Welcome to the quarterly review"},
		{FrameIndex: 2, FramePath: "frames/u1/frame_000002.png", Text: ""},
		{FrameIndex: 3, FramePath: "frames/u1/frame_000003.png", Text: "Revenue grew 14% year over year"},
		{FrameIndex: 4, FramePath: "frames/u1/frame_000004.png", Text: "Revenue grew 14% year over year"},
		{FrameIndex: 5, FramePath: "frames/u1/frame_000005.png", Text: "Questions?"},
	}
}
