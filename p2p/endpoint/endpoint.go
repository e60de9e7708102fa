// Package endpoint describes the address a node advertises as reachable.
package endpoint

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/p2p/enr"
	"github.com/pkg/errors"
)

// NodeEndpoint is a TCP socket address plus the UDP port used for discovery.
type NodeEndpoint struct {
	Address net.TCPAddr
	UDPPort uint16
}

// New returns the endpoint ip:tcpPort with discovery on udpPort.
func New(ip net.IP, tcpPort, udpPort uint16) *NodeEndpoint {
	return &NodeEndpoint{
		Address: net.TCPAddr{IP: ip, Port: int(tcpPort)},
		UDPPort: udpPort,
	}
}

// Parse reads "ip:tcp" or "ip:tcp:udp". IPv6 hosts must be bracketed.
// Without an explicit UDP port the TCP port is used for both.
func Parse(s string) (*NodeEndpoint, error) {
	host, tcp, err := net.SplitHostPort(s)
	udp := tcp
	if err != nil {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			return nil, errors.Wrapf(err, "invalid endpoint %q", s)
		}
		if host, tcp, err = net.SplitHostPort(s[:i]); err != nil {
			return nil, errors.Wrapf(err, "invalid endpoint %q", s)
		}
		udp = s[i+1:]
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, errors.Errorf("invalid endpoint %q: %q is not an IP address", s, host)
	}
	tcpPort, err := parsePort(tcp)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %q", s)
	}
	udpPort, err := parsePort(udp)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %q", s)
	}
	return New(ip, tcpPort, udpPort), nil
}

func parsePort(s string) (uint16, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Errorf("bad port %q", s)
	}
	return uint16(p), nil
}

// FromRecord extracts the endpoint stored in a node record. It fails if any
// of the ip, tcp or udp entries is missing.
func FromRecord(r *enr.Record) (*NodeEndpoint, error) {
	var (
		ip  enr.IP
		tcp enr.TCP
		udp enr.UDP
	)
	for _, e := range []enr.Entry{&ip, &tcp, &udp} {
		if err := r.Load(e); err != nil {
			return nil, err
		}
	}
	return New(net.IP(ip), uint16(tcp), uint16(udp)), nil
}

// Validate checks that the endpoint can be advertised at all.
func (e *NodeEndpoint) Validate() error {
	switch {
	case e == nil:
		return errors.New("no endpoint")
	case e.Address.IP == nil:
		return errors.New("endpoint has no IP address")
	case e.Address.IP.IsUnspecified():
		return errors.Errorf("endpoint IP %v is unspecified", e.Address.IP)
	case e.Address.Port <= 0 || e.Address.Port > 65535:
		return errors.Errorf("endpoint TCP port %d out of range", e.Address.Port)
	case e.UDPPort == 0:
		return errors.New("endpoint UDP port is zero")
	}
	return nil
}

// Equal reports whether both endpoints advertise the same address and ports.
func (e *NodeEndpoint) Equal(o *NodeEndpoint) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.Address.IP.Equal(o.Address.IP) && e.Address.Port == o.Address.Port && e.UDPPort == o.UDPPort
}

// UDPAddr is the discovery address of the endpoint.
func (e *NodeEndpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.Address.IP, Port: int(e.UDPPort)}
}

func (e *NodeEndpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Address.String(), e.UDPPort)
}
