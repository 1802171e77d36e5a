package model

import (
	"net"
	"strings"
)

const defaultPort = "27017"

// Addr is the address of a server node.
type Addr string

// Canonicalize lowercases the address and fills in the default port,
// so addresses naming the same node compare equal. Unix socket paths
// only get the case treatment.
func (a Addr) Canonicalize() Addr {
	s := strings.ToLower(string(a))
	if strings.Contains(s, "sock") {
		return Addr(s)
	}
	if _, _, err := net.SplitHostPort(s); err != nil && strings.Contains(err.Error(), "missing port in address") {
		s = net.JoinHostPort(s, defaultPort)
	}
	return Addr(s)
}

// Network gets the network of the address.
func (a Addr) Network() string {
	if strings.HasSuffix(string(a), "sock") {
		return "unix"
	}
	return "tcp"
}

func (a Addr) String() string {
	return string(a)
}
