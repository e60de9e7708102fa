// Package nat finds the endpoint a node behind a NAT gateway should
// advertise.
package nat

import (
	"net"
	"time"

	gonat "github.com/fd/go-nat"
	"github.com/pkg/errors"

	"github.com/herdius/herdius-enr/p2p/endpoint"
	"github.com/herdius/herdius-enr/p2p/log"
)

// DefaultLifetime is how long port mappings are requested for.
const DefaultLifetime = 20 * time.Minute

const mappingDesc = "herdius node"

// Gateway is the part of a NAT device needed to work out the external
// endpoint. It is satisfied by go-nat's NAT.
type Gateway interface {
	Type() string
	GetExternalAddress() (addr net.IP, err error)
	AddPortMapping(protocol string, internalPort int, description string, timeout time.Duration) (mappedExternalPort int, err error)
}

var _ Gateway = gonat.NAT(nil)

// Discover looks for a UPnP or NAT-PMP gateway on the local network.
func Discover() (gonat.NAT, error) {
	gw, err := gonat.DiscoverGateway()
	if err != nil {
		return nil, errors.Wrap(err, "no NAT gateway found")
	}
	log.Info().Str("type", gw.Type()).Msg("Found NAT gateway")
	return gw, nil
}

// MapEndpoint maps the node's TCP and UDP ports on gw and returns the
// externally reachable endpoint.
func MapEndpoint(gw Gateway, tcpPort, udpPort uint16, lifetime time.Duration) (*endpoint.NodeEndpoint, error) {
	ip, err := gw.GetExternalAddress()
	if err != nil {
		return nil, errors.Wrap(err, "could not get external address")
	}
	extTCP, err := gw.AddPortMapping("tcp", int(tcpPort), mappingDesc, lifetime)
	if err != nil {
		return nil, errors.Wrapf(err, "could not map tcp port %d", tcpPort)
	}
	extUDP, err := gw.AddPortMapping("udp", int(udpPort), mappingDesc, lifetime)
	if err != nil {
		return nil, errors.Wrapf(err, "could not map udp port %d", udpPort)
	}
	ep := endpoint.New(ip, uint16(extTCP), uint16(extUDP))
	if err := ep.Validate(); err != nil {
		return nil, errors.Wrap(err, "gateway returned an unusable endpoint")
	}
	log.Info().Str("type", gw.Type()).Str("endpoint", ep.String()).Msg("Mapped external endpoint")
	return ep, nil
}
