package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfCommand(t *testing.T) {
	cmd, err := SelfCommand(false)
	require.NoError(t, err)

	assert.NotEmpty(t, cmd.Binary)
	assert.Equal(t, []string{"worker"}, cmd.ExtraArgs)
	assert.Equal(t, []string{WorkerEnv + "=1"}, cmd.Env)

	cmd, err = SelfCommand(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"worker", "--verbose"}, cmd.ExtraArgs)
}
