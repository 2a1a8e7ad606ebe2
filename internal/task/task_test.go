// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task_test

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/task"
)

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	ownerID := ulid.Make()

	t.Run("valid task without description", func(t *testing.T) {
		tk, err := task.New(ownerID, "buy milk", nil)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", tk.Title)
		assert.Nil(t, tk.Description)
		assert.False(t, tk.Completed)
		assert.Equal(t, ownerID, tk.OwnerID)
		assert.NotZero(t, tk.ID)
	})

	t.Run("valid task with description", func(t *testing.T) {
		tk, err := task.New(ownerID, "buy milk", strPtr("two liters, whole"))
		require.NoError(t, err)
		require.NotNil(t, tk.Description)
		assert.Equal(t, "two liters, whole", *tk.Description)
	})

	t.Run("new tasks always start incomplete", func(t *testing.T) {
		tk, err := task.New(ownerID, "buy milk", nil)
		require.NoError(t, err)
		assert.False(t, tk.Completed)
	})
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"empty", "", true},
		{"two chars too short", "ab", true},
		{"three chars minimum", "abc", false},
		{"hundred chars maximum", strings.Repeat("a", 100), false},
		{"hundred-one chars too long", strings.Repeat("a", 101), true},
		{"invalid utf-8", "abc\xff\xfe", true},
		{"two multibyte runes too short", "éé", true}, // 4 bytes, 2 chars
		{"three cyrillic runes minimum", "дел", false},
		{"long cyrillic title fits", strings.Repeat("я", 60), false}, // 120 bytes, 60 chars
		{"hundred cyrillic runes maximum", strings.Repeat("я", 100), false},
		{"hundred-one cyrillic runes too long", strings.Repeat("я", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := task.ValidateTitle(tt.title)
			if tt.wantErr {
				var vErr *task.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "title", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	t.Run("nil description is valid", func(t *testing.T) {
		assert.NoError(t, task.ValidateDescription(nil))
	})

	t.Run("empty description is valid", func(t *testing.T) {
		assert.NoError(t, task.ValidateDescription(strPtr("")))
	})

	t.Run("250 chars fits", func(t *testing.T) {
		assert.NoError(t, task.ValidateDescription(strPtr(strings.Repeat("a", 250))))
	})

	t.Run("251 chars rejected", func(t *testing.T) {
		err := task.ValidateDescription(strPtr(strings.Repeat("a", 251)))
		var vErr *task.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "description", vErr.Field)
	})

	t.Run("250 cyrillic runes fit", func(t *testing.T) {
		assert.NoError(t, task.ValidateDescription(strPtr(strings.Repeat("ф", 250))))
	})

	t.Run("251 cyrillic runes rejected", func(t *testing.T) {
		err := task.ValidateDescription(strPtr(strings.Repeat("ф", 251)))
		var vErr *task.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "description", vErr.Field)
	})

	t.Run("invalid utf-8 rejected", func(t *testing.T) {
		err := task.ValidateDescription(strPtr("ok\xff"))
		assert.Error(t, err)
	})
}
