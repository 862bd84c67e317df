package cli

import (
	"bytes"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
)

func testConfig() *config.Config {
	var c config.Config
	c.Normalize()
	return &c
}

func TestProbeHost(t *testing.T) {
	assert.Equal(t, "127.0.0.1", probeHost(""))
	assert.Equal(t, "127.0.0.1", probeHost("0.0.0.0"))
	assert.Equal(t, "127.0.0.1", probeHost("::"))
	assert.Equal(t, "localhost", probeHost("localhost"))
}

func TestVersionCommand(t *testing.T) {
	root := SetupRootCmd(testConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "promptmetal "+AppVersion)
}

func TestProbeCommand(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	root := SetupRootCmd(testConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"probe", "--port", strconv.Itoa(port), "--timeout", "2s"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "is accepting connections")
}

func TestProbeCommandTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	root := SetupRootCmd(testConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"probe", "--port", strconv.Itoa(port), "--timeout", "300ms"})

	err = root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "300ms")
}
