// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/pkg/errutil"
)

func captureLog(t *testing.T, fn func(logger *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	fn(logger)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogError(t *testing.T) {
	t.Run("oops error logs code and context", func(t *testing.T) {
		err := oops.Code("TASK_NOT_FOUND").With("task_id", "abc").Errorf("task not found")

		record := captureLog(t, func(logger *slog.Logger) {
			errutil.LogError(logger, "request failed", err)
		})

		assert.Equal(t, "request failed", record["msg"])
		assert.Equal(t, "TASK_NOT_FOUND", record["code"])
		ctx, ok := record["context"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "abc", ctx["task_id"])
	})

	t.Run("oops error without code omits the attribute", func(t *testing.T) {
		err := oops.Errorf("plain oops")

		record := captureLog(t, func(logger *slog.Logger) {
			errutil.LogError(logger, "request failed", err)
		})

		_, hasCode := record["code"]
		assert.False(t, hasCode)
	})

	t.Run("standard error logs as-is", func(t *testing.T) {
		record := captureLog(t, func(logger *slog.Logger) {
			errutil.LogError(logger, "request failed", errors.New("plain failure"))
		})

		assert.Equal(t, "plain failure", record["error"])
		_, hasCode := record["code"]
		assert.False(t, hasCode)
	})
}

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("SESSION_INVALID").Errorf("bad token")
	errutil.AssertErrorCode(t, err, "SESSION_INVALID")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("username", "alice").Errorf("boom")
	errutil.AssertErrorContext(t, err, "username", "alice")
}
