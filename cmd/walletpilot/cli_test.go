package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
)

func TestRootCommands(t *testing.T) {
	root := SetupRootCmd()
	for _, name := range []string{"launch", "setup", "windows", "urls", "address", "approve", "reject", "network", "account", "secrets", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	cmd, _, err := root.Find([]string{"network", "add"})
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("chain-id"))
}

func TestRequestKinds(t *testing.T) {
	assert.Contains(t, requestKinds(approvals), "add-and-switch-network")
	assert.NotContains(t, requestKinds(rejections), "access")
	assert.Equal(t, requestKinds(rejections), []string{
		"add-network", "data-signature", "decryption", "encryption-key",
		"signature", "spend", "switch-network", "transaction",
	})
}

func TestAttachConfig(t *testing.T) {
	b := attachConfig(browser.Config{})
	assert.Equal(t, "http://127.0.0.1:9222", b.CDPUrl)

	b = attachConfig(browser.Config{CDPPort: 9333})
	assert.Equal(t, "http://127.0.0.1:9333", b.CDPUrl)

	b = attachConfig(browser.Config{CDPUrl: "http://10.0.0.5:9222"})
	assert.Equal(t, "http://10.0.0.5:9222", b.CDPUrl)
}
