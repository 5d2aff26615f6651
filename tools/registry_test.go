package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/types"
)

func TestRegistry_InvokeRegisteredTool(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(zap.NewNop())
	reg.Register("search", ToolFunc(func(_ context.Context, query string) (any, error) {
		return "results for " + query, nil
	}))

	out, err := reg.Invoke(context.Background(), "search", "golang")
	require.NoError(t, err)
	assert.Equal(t, "results for golang", out)
	assert.Equal(t, []string{"search"}, reg.Names())
}

func TestRegistry_UnknownToolIsConfigError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(zap.NewNop())
	_, err := reg.Invoke(context.Background(), "x", "query")
	require.Error(t, err)
	assert.Equal(t, types.ErrToolNotFound, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), `"x"`)
}

func TestRegistry_ToolFailureIsUpstreamError(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	reg := NewRegistry(zap.NewNop())
	reg.Register("flaky", ToolFunc(func(context.Context, string) (any, error) {
		return nil, boom
	}))

	_, err := reg.Invoke(context.Background(), "flaky", "q")
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
	assert.True(t, errors.Is(err, boom))
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Serialize("plain"))
	assert.Equal(t, "", Serialize(nil))
	assert.Equal(t, `{"count":2}`, Serialize(map[string]int{"count": 2}))
	assert.Equal(t, "42", Serialize(42))
}
