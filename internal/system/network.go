package system

import (
	"errors"
	"net"
)

// ErrNoLANAddress is returned when no up, non-loopback IPv4 address exists.
var ErrNoLANAddress = errors.New("no LAN IPv4 address found")

// LANIPv4 returns the first private IPv4 address on an interface that is up,
// falling back to any non-loopback IPv4 address.
func LANIPv4() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	return pickLANIPv4(ifaces, func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() })
}

func pickLANIPv4(ifaces []net.Interface, addrsOf func(net.Interface) ([]net.Addr, error)) (string, error) {
	var fallback string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := addrsOf(iface)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := ipOf(addr)
			if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
				continue
			}
			ip4 := ip.To4()
			if ip4 == nil {
				continue
			}
			if ip4.IsPrivate() {
				return ip4.String(), nil
			}
			if fallback == "" {
				fallback = ip4.String()
			}
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoLANAddress
}

func ipOf(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		return nil
	}
}
