package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noaland/mirror"
)

func TestServeCommand(t *testing.T) {
	t.Run("has correct usage", func(t *testing.T) {
		cmd := NewServeCommand()
		assert.Equal(t, "serve", cmd.Use)
		assert.NotEmpty(t, cmd.Short)
		assert.NotEmpty(t, cmd.Long)
		assert.NotEmpty(t, cmd.Example)
	})

	t.Run("has address flag", func(t *testing.T) {
		cmd := NewServeCommand()
		require.NotNil(t, cmd.Flags().Lookup("address"))
	})
}

func TestRegisterReportTypes(t *testing.T) {
	mirror.Reset()
	t.Cleanup(mirror.Reset)

	require.NoError(t, registerReportTypes())

	assert.Equal(t, 3, mirror.Len())

	in, ok := mirror.LookupName("inspect.StructLayout")
	require.True(t, ok)
	assert.Equal(t, 4, in.NumFields())

	in, ok = mirror.LookupName("inspect.PackageReport")
	require.True(t, ok)
	assert.Equal(t, []string{"Path", "Name", "Dir", "Structs"}, fieldNames(in))
}

func fieldNames(in *mirror.Info) []string {
	names := make([]string, 0, in.NumFields())
	for _, f := range in.Fields() {
		names = append(names, f.Name)
	}
	return names
}
