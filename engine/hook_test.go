package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/testutil"
	"github.com/underthemoss/construction-taxonomy/store"
)

func TestCommandHook(t *testing.T) {
	root := testutil.NewLibrary(t)
	lib := &store.Library{}

	tests := []struct {
		name    string
		command string
		wantErr string
	}{
		{"runs in the library root", "test -d attributes/physics", ""},
		{"quoted arguments", `sh -c 'test -d "attributes/brand"'`, ""},
		{"non-zero exit", `sh -c 'echo "name missing" >&2; exit 2'`, "validate command sh"},
		{"missing binary", "taxonomy-no-such-validator", "validate command taxonomy-no-such-validator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook, err := CommandHook(root, tt.command, time.Minute, nil)
			require.NoError(t, err)

			err = hook(context.Background(), lib)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommandHookOutputDetail(t *testing.T) {
	root := testutil.NewLibrary(t)
	hook, err := CommandHook(root, `sh -c 'echo "weight: unit missing"; exit 1'`, 0, nil)
	require.NoError(t, err)

	err = hook(context.Background(), &store.Library{})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenDetails(err), "weight: unit missing")
}

func TestCommandHookTimeout(t *testing.T) {
	root := testutil.NewLibrary(t)
	hook, err := CommandHook(root, "sleep 5", 50*time.Millisecond, nil)
	require.NoError(t, err)

	start := time.Now()
	err = hook(context.Background(), &store.Library{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommandHookParse(t *testing.T) {
	for _, command := range []string{"   ", `sh -c 'unterminated`} {
		_, err := CommandHook(t.TempDir(), command, 0, nil)
		require.Error(t, err, command)
		assert.True(t, errors.IsInvalid(err), command)
	}
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short\n", 10))
	assert.Equal(t, "...6789", tail("0123456789", 4))
	assert.Equal(t, "...ж", tail("жжж", 3))
}
