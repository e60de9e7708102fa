package config

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[dev]
store = "badger"
ip = "10.1.2.3"
tcpport = 4000

[staging]
store = "s3"
s3bucket = "bucket"
ip = "203.0.113.9"
tcpport = 30303
udpport = 30301
nat = true
`

func writeConfig(t *testing.T, content string) (string, func()) {
	dir, err := ioutil.TempDir("", "config_test_")
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
	return dir, func() { os.RemoveAll(dir) }
}

func TestGetConfigurationDev(t *testing.T) {
	dir, remove := writeConfig(t, testConfig)
	defer remove()

	detail, err := GetConfiguration("anything", dir)
	require.NoError(t, err)
	assert.Equal(t, StoreBadger, detail.Store)
	assert.Equal(t, 4000, detail.TCPPort)
	assert.Equal(t, 4000, detail.UDPPort)
	assert.Equal(t, filepath.Join(dir, "nodekey.json"), detail.NodeKey)
	assert.False(t, detail.NAT)

	ep, err := detail.Endpoint()
	require.NoError(t, err)
	assert.True(t, net.ParseIP("10.1.2.3").Equal(ep.Address.IP))
	assert.Equal(t, uint16(4000), ep.UDPPort)
}

func TestGetConfigurationStaging(t *testing.T) {
	dir, remove := writeConfig(t, testConfig)
	defer remove()

	detail, err := GetConfiguration("staging", dir)
	require.NoError(t, err)
	assert.Equal(t, StoreS3, detail.Store)
	assert.Equal(t, "bucket", detail.S3Bucket)
	assert.Equal(t, 30301, detail.UDPPort)
	assert.True(t, detail.NAT)
}

func TestGetConfigurationDefaults(t *testing.T) {
	dir, err := ioutil.TempDir("", "config_test_")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	detail, err := GetConfiguration("dev", dir)
	require.NoError(t, err)
	assert.Equal(t, StoreFile, detail.Store)
	assert.Equal(t, 30303, detail.TCPPort)
	assert.Equal(t, "info", detail.LogLevel)
}

func TestGetConfigurationEnvOverride(t *testing.T) {
	dir, remove := writeConfig(t, testConfig)
	defer remove()

	os.Setenv("ENR_DEV_TCPPORT", "5000")
	defer os.Unsetenv("ENR_DEV_TCPPORT")

	detail, err := GetConfiguration("dev", dir)
	require.NoError(t, err)
	assert.Equal(t, 5000, detail.TCPPort)
}

func TestGetConfigurationInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"unknown store": "[dev]\nstore = \"tape\"\n",
		"s3 no bucket":  "[dev]\nstore = \"s3\"\n",
		"bad port":      "[dev]\ntcpport = 70000\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir, remove := writeConfig(t, content)
			defer remove()
			_, err := GetConfiguration("dev", dir)
			assert.Error(t, err)
		})
	}
}

func TestEndpointBadIP(t *testing.T) {
	d := &Detail{IP: "node.local", TCPPort: 1, UDPPort: 1}
	_, err := d.Endpoint()
	assert.Error(t, err)
}
