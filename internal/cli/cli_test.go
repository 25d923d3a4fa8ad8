package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestDKGCommand(t *testing.T) {
	out, err := execute(t, "dkg", "--parties", "4", "--threshold", "3", "--session", "dkg-test", "--workers", "2")
	require.NoError(t, err)

	var summary dkgSummary
	require.NoError(t, yaml.Unmarshal(out, &summary))
	assert.Equal(t, "dkg", summary.Protocol)
	assert.Equal(t, "dkg-test", summary.Session)
	require.NotNil(t, summary.Key)
	assert.Equal(t, 3, summary.Key.Threshold)
	assert.Len(t, summary.Key.Parties, 4)
	assert.Len(t, summary.Key.PublicKey, 66)
	assert.Regexp(t, "^0x[0-9a-fA-F]{40}$", summary.Key.Address)
	assert.Positive(t, summary.Messages)
}

func TestRefreshCommand(t *testing.T) {
	out, err := execute(t, "refresh")
	require.NoError(t, err)

	var summary refreshSummary
	require.NoError(t, yaml.Unmarshal(out, &summary))
	assert.NotEmpty(t, summary.Session)
	assert.True(t, summary.PublicKeyUnchanged)
	assert.True(t, summary.PrivateSharesRotated)
}

func TestRecoverCommand(t *testing.T) {
	out, err := execute(t, "recover", "--target", "a")
	require.NoError(t, err)

	var summary recoverSummary
	require.NoError(t, yaml.Unmarshal(out, &summary))
	assert.Equal(t, "a", summary.Target)
	assert.Equal(t, []string{"b", "c"}, summary.Helpers)
	assert.True(t, summary.Recovered)

	var share string
	for _, p := range summary.Key.Parties {
		if p.ID == "a" {
			share = p.PublicShare
		}
	}
	assert.Equal(t, share, summary.PublicShare)
}

func TestRecoverCommand_Invalid(t *testing.T) {
	_, err := execute(t, "recover", "--target", "z")
	assert.Error(t, err)

	_, err = execute(t, "recover", "--parties", "4", "--threshold", "3")
	assert.Error(t, err, "recovery requires a threshold of 2")
}

func TestConfigSources(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mpcsim.yaml")
	require.NoError(t, os.WriteFile(file, []byte("parties: 5\nthreshold: 3\n"), 0o600))

	out, err := execute(t, "dkg", "--config", file)
	require.NoError(t, err)
	var summary dkgSummary
	require.NoError(t, yaml.Unmarshal(out, &summary))
	assert.Len(t, summary.Key.Parties, 5)
	assert.Equal(t, 3, summary.Key.Threshold)

	t.Setenv("MPCSIM_THRESHOLD", "2")
	out, err = execute(t, "dkg", "--config", file, "--parties", "2")
	require.NoError(t, err)
	summary = dkgSummary{}
	require.NoError(t, yaml.Unmarshal(out, &summary))
	assert.Len(t, summary.Key.Parties, 2, "flags take precedence over the config file")
	assert.Equal(t, 2, summary.Key.Threshold, "environment takes precedence over the config file")
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, "dkg", "--parties", "3", "--threshold", "4")
	assert.Error(t, err)

	_, err = execute(t, "dkg", "--log-level", "loud")
	assert.Error(t, err)
}
