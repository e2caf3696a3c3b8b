package net

import (
	"log"
	"net"
)

// FeedURL is the websocket address LAN subscribers use for a feed
// listening on listen. A wildcard host is replaced by a LAN address of
// this machine.
func FeedURL(listen string) (string, error) {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", err
	}
	if isWildcard(host) {
		host = lanAddr()
	}
	return "ws://" + net.JoinHostPort(host, port) + "/", nil
}

func isWildcard(host string) bool {
	if host == "" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsUnspecified()
}

// lanAddr prefers a private IPv4 address of an interface that is up, then
// any other routable IPv4 address, then loopback.
func lanAddr() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Printf("[FEED] Listing interfaces: %v", err)
		return "127.0.0.1"
	}

	var fallback net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil || ip.IsLinkLocalUnicast() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == nil {
				fallback = ip
			}
		}
	}
	if fallback != nil {
		return fallback.String()
	}
	log.Println("[FEED] No LAN address found, using loopback")
	return "127.0.0.1"
}
