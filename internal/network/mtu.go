package network

import (
	"fmt"
	"net"
	"strings"
)

const (
	defaultMTU  int = 1500
	ip4Overhead int = 60 + 8 // max IPv4 header plus UDP header
	ip6Overhead int = 80 + 8
)

// Largest UDP payload that fits one frame on the path to destination (host or host:port)
func MaxUDPPayload(destination string) (maxPayloadSize int, err error) {
	host, _, splitErr := net.SplitHostPort(destination)
	if splitErr != nil {
		// Bare host or IP
		host = destination
	}
	host = strings.Trim(host, "[]")

	ip := net.ParseIP(host)
	if ip == nil {
		var addrs []net.IP
		addrs, err = net.LookupIP(host)
		if err != nil || len(addrs) == 0 {
			err = fmt.Errorf("unable to resolve destination %q: %v", host, err)
			return
		}
		ip = addrs[0]
	}

	overhead := ip6Overhead
	if ip.To4() != nil {
		overhead = ip4Overhead
	}

	mtu, err := egressMTU(ip)
	if err != nil || mtu <= 0 {
		mtu = defaultMTU
		err = nil
	}

	maxPayloadSize = mtu - overhead
	return
}

// MTU of the interface the kernel would route ip through
func egressMTU(ip net.IP) (mtu int, err error) {
	// Connecting a UDP socket selects a route without sending anything
	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: ip, Port: 9})
	if err != nil {
		err = fmt.Errorf("failed to find route to %s: %w", ip, err)
		return
	}
	local := conn.LocalAddr().(*net.UDPAddr).IP
	conn.Close()

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}
	for _, iface := range ifaces {
		addrs, addrErr := iface.Addrs()
		if addrErr != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if ok && ipNet.IP.Equal(local) {
				mtu = iface.MTU
				return
			}
		}
	}
	err = fmt.Errorf("no interface owns local address %s", local)
	return
}
