package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/herdius/herdius-enr/p2p/endpoint"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
	StoreS3     = "s3"
)

// Detail is the node record configuration of one environment.
type Detail struct {
	NodeKey  string // Path of the node key file
	DataDir  string // Where the record is kept by the file and badger stores
	Store    string // One of StoreFile, StoreBadger, StoreS3
	S3Bucket string
	S3Prefix string
	IP       string // The IP to advertise to the network
	TCPPort  int    // The TCP port to advertise to the network
	UDPPort  int    // The discovery port to advertise to the network
	NAT      bool   // Ask the NAT gateway for the external endpoint instead of IP
	LogLevel string
}

// GetConfiguration reads the "config" file in dir and returns the section
// for env. Only "staging" and "dev" exist; anything else means "dev".
// Every key can be overridden from the environment, e.g. ENR_DEV_TCPPORT.
func GetConfiguration(env, dir string) (*Detail, error) {
	if env != "staging" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigName("config") // Config file name without extension
	v.AddConfigPath(dir)      // Path to config file
	v.SetEnvPrefix("enr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	key := func(k string) string { return fmt.Sprint(env, ".", k) }
	v.SetDefault(key("nodekey"), filepath.Join(dir, "nodekey.json"))
	v.SetDefault(key("datadir"), filepath.Join(dir, "network"))
	v.SetDefault(key("store"), StoreFile)
	v.SetDefault(key("ip"), "127.0.0.1")
	v.SetDefault(key("tcpport"), 30303)
	v.SetDefault(key("udpport"), 0)
	v.SetDefault(key("loglevel"), "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("Config file could not be read: %v", err)
		}
	}

	detail := &Detail{
		NodeKey:  v.GetString(key("nodekey")),
		DataDir:  v.GetString(key("datadir")),
		Store:    v.GetString(key("store")),
		S3Bucket: v.GetString(key("s3bucket")),
		S3Prefix: v.GetString(key("s3prefix")),
		IP:       v.GetString(key("ip")),
		TCPPort:  v.GetInt(key("tcpport")),
		UDPPort:  v.GetInt(key("udpport")),
		NAT:      v.GetBool(key("nat")),
		LogLevel: v.GetString(key("loglevel")),
	}
	if detail.UDPPort == 0 {
		detail.UDPPort = detail.TCPPort
	}
	if err := detail.validate(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (d *Detail) validate() error {
	switch d.Store {
	case StoreFile, StoreBadger:
	case StoreS3:
		if d.S3Bucket == "" {
			return fmt.Errorf("store %q needs s3bucket", d.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", d.Store)
	}
	if d.TCPPort <= 0 || d.TCPPort > 65535 {
		return fmt.Errorf("tcpport %d out of range", d.TCPPort)
	}
	if d.UDPPort <= 0 || d.UDPPort > 65535 {
		return fmt.Errorf("udpport %d out of range", d.UDPPort)
	}
	return nil
}

// Endpoint is the configured endpoint to advertise.
func (d *Detail) Endpoint() (*endpoint.NodeEndpoint, error) {
	ip := net.ParseIP(d.IP)
	if ip == nil {
		return nil, fmt.Errorf("ip %q is not an IP address", d.IP)
	}
	ep := endpoint.New(ip, uint16(d.TCPPort), uint16(d.UDPPort))
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	return ep, nil
}
