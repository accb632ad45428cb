package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{name: "release", version: "1.2.3-test", want: "testwright version 1.2.3-test\n"},
		{name: "unset", version: "", want: "testwright version \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.Version = tt.version
			versionCmd := newVersionCmd()

			var buf bytes.Buffer
			versionCmd.SetOut(&buf)
			versionCmd.SetArgs([]string{})
			require.NoError(t, versionCmd.Execute())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestVersionCmd_Help(t *testing.T) {
	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.SetErr(&buf)
	versionCmd.SetArgs([]string{"--help"})

	require.NoError(t, versionCmd.Execute())
	assert.Contains(t, buf.String(), "All software has versions")
}
