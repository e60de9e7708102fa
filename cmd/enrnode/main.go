package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/p2p/enode"
	"github.com/ethereum/go-ethereum/p2p/enr"

	"github.com/herdius/herdius-enr/aws"
	"github.com/herdius/herdius-enr/config"
	"github.com/herdius/herdius-enr/p2p/endpoint"
	"github.com/herdius/herdius-enr/p2p/identity"
	"github.com/herdius/herdius-enr/p2p/key"
	"github.com/herdius/herdius-enr/p2p/log"
	"github.com/herdius/herdius-enr/p2p/nat"
	"github.com/herdius/herdius-enr/p2p/noderecord"
	"github.com/herdius/herdius-enr/storage/db"
	"github.com/herdius/herdius-enr/storage/disk"
)

func main() {
	envFlag := flag.String("env", "dev", "configuration section to use (dev/staging)")
	configFlag := flag.String("config", "./config", "directory holding config.toml")
	nodeKeyFlag := flag.String("nodekey", "", "node key file, overrides the configured one")
	ipFlag := flag.String("ip", "", "IP to advertise, overrides the configured one")
	tcpPortFlag := flag.Int("tcpport", 0, "TCP port to advertise")
	udpPortFlag := flag.Int("udpport", 0, "UDP discovery port to advertise")
	natFlag := flag.Bool("nat", false, "map ports on the NAT gateway and advertise its external address")
	dumpFlag := flag.Bool("dump", false, "dump the decoded record")
	flag.Parse()

	detail, err := config.GetConfiguration(*envFlag, *configFlag)
	if err != nil {
		log.Fatal().Msgf("Failed to load configuration: %v", err)
	}
	applyFlags(detail, *nodeKeyFlag, *ipFlag, *tcpPortFlag, *udpPortFlag, *natFlag)

	if err := run(detail, *dumpFlag); err != nil {
		log.Fatal().Msgf("%v", err)
	}
}

// run does all the work that holds resources, so that deferred cleanup
// happens before main exits on failure.
func run(detail *config.Detail, dump bool) error {
	if err := log.SetLevel(detail.LogLevel); err != nil {
		return fmt.Errorf("Invalid log level: %v", err)
	}

	nodeKey, err := key.LoadNodeKey(detail.NodeKey)
	if err != nil {
		return fmt.Errorf("Failed to load node key: %v", err)
	}

	store, closeStore, err := openStore(detail)
	if err != nil {
		return fmt.Errorf("Failed to open %s store: %v", detail.Store, err)
	}
	defer closeStore()

	ep, err := resolveEndpoint(detail)
	if err != nil {
		return fmt.Errorf("Failed to resolve endpoint: %v", err)
	}

	id, err := identity.Open(nodeKey, store, ep)
	if err != nil {
		return fmt.Errorf("Failed to open node record: %v", err)
	}
	r, err := id.Close()
	if err != nil {
		log.Error().Msgf("Failed to persist node record: %v", err)
	}
	if err := printRecord(r, dump); err != nil {
		return fmt.Errorf("Node record is invalid: %v", err)
	}
	return nil
}

func applyFlags(detail *config.Detail, nodeKey, ip string, tcpPort, udpPort int, useNAT bool) {
	if nodeKey != "" {
		detail.NodeKey = nodeKey
	}
	if ip != "" {
		detail.IP = ip
	}
	if tcpPort != 0 {
		detail.TCPPort = tcpPort
	}
	if udpPort != 0 {
		detail.UDPPort = udpPort
	}
	if useNAT {
		detail.NAT = true
	}
}

func openStore(detail *config.Detail) (disk.Store, func(), error) {
	switch detail.Store {
	case config.StoreBadger:
		dir := filepath.Join(detail.DataDir, "badger")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, err
		}
		database, err := db.NewBadgerDB(dir, dir)
		if err != nil {
			return nil, nil, err
		}
		return disk.NewDBStore(database), func() { database.Close() }, nil
	case config.StoreS3:
		store, err := aws.NewS3StoreFromEnv(detail.S3Bucket, detail.S3Prefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return disk.NewFileStore(detail.DataDir), func() {}, nil
	}
}

func resolveEndpoint(detail *config.Detail) (*endpoint.NodeEndpoint, error) {
	if !detail.NAT {
		return detail.Endpoint()
	}
	gw, err := nat.Discover()
	if err != nil {
		return nil, err
	}
	return nat.MapEndpoint(gw, uint16(detail.TCPPort), uint16(detail.UDPPort), nat.DefaultLifetime)
}

func printRecord(r *enr.Record, dump bool) error {
	node, err := enode.New(enode.ValidSchemes, r)
	if err != nil {
		return err
	}
	text, err := noderecord.EncodeText(r)
	if err != nil {
		return err
	}
	fmt.Printf("id:       %s\n", node.ID())
	fmt.Printf("seq:      %d\n", node.Seq())
	fmt.Printf("tcp:      %s\n", &net.TCPAddr{IP: node.IP(), Port: node.TCP()})
	fmt.Printf("udp:      %s\n", &net.UDPAddr{IP: node.IP(), Port: node.UDP()})
	fmt.Printf("record:   %s\n", text)
	if dump {
		spew.Dump(r)
	}
	return nil
}
