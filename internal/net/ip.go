// Package net carries boards' edits between machines: the relay that fans
// frames out, the client boards use to reach it, and LAN discovery.
package net

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// Scheme prefixes share links handed to other boards.
const Scheme = "liveboard://"

// GetOutgoingIP finds the local address other machines can reach this one
// on. Without a default route it falls back to the interface addresses.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return getLocalIPFallback()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func getLocalIPFallback() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, address := range addrs {
			if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	slog.Warn("no suitable local IP found, share link will use loopback")
	return "127.0.0.1"
}

// ShareLink is the link another board opens to join a relay on port.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s", Scheme, net.JoinHostPort(ip, fmt.Sprint(port)))
}

// ParseShareLink returns the relay address ("host:port") in link.
func ParseShareLink(link string) (string, error) {
	if !strings.HasPrefix(link, Scheme) {
		return "", fmt.Errorf("share link %q does not start with %s", link, Scheme)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("share link %q: %w", link, err)
	}
	return addr, nil
}
