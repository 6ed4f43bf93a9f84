// Package discovery centralizes service address conventions.
package discovery

import (
	"strconv"
	"strings"
)

// ServiceDeathSwap is the deathswap control service identity.
const ServiceDeathSwap = "deathswap"

// LocalHost is the host used when dialing a service on the same machine.
const LocalHost = "localhost"

var grpcPorts = map[string]int{
	ServiceDeathSwap: 8095,
}

var httpPorts = map[string]int{
	ServiceDeathSwap: 8096,
}

// DefaultGRPCPort returns the conventional gRPC port for service, or 0.
func DefaultGRPCPort(service string) int {
	return grpcPorts[strings.TrimSpace(service)]
}

// DefaultHTTPPort returns the conventional HTTP port for service, or 0.
func DefaultHTTPPort(service string) int {
	return httpPorts[strings.TrimSpace(service)]
}

// DefaultGRPCAddr returns the canonical in-network gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return addr(strings.TrimSpace(service), DefaultGRPCPort(service))
}

// DefaultHTTPAddr returns the canonical in-network HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return addr(strings.TrimSpace(service), DefaultHTTPPort(service))
}

// OrLocalGRPCAddr returns value when set, otherwise the service port on
// LocalHost.
func OrLocalGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return addr(LocalHost, DefaultGRPCPort(service))
}

func addr(host string, port int) string {
	if host == "" || port <= 0 {
		return ""
	}
	return host + ":" + strconv.Itoa(port)
}
