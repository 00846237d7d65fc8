package uuid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsVersion7(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	first := g.NewID()
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), parsed.Version())
	require.NotEqual(t, first, g.NewID())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	incoming := "3F2504E0-4F89-11D3-9A0C-0305E82C3301"
	require.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", g.Resolve(" "+incoming+" "))

	minted := g.Resolve("not-a-uuid")
	_, err := uuid.Parse(minted)
	require.NoError(t, err)
	require.NotEqual(t, "not-a-uuid", minted)

	require.NotEmpty(t, g.Resolve(""))
}
