// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking provides loopback port discovery for short-lived
// local listeners.
package networking

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

const (
	// LoopbackHost is the only interface the callback listener binds to.
	LoopbackHost = "127.0.0.1"

	// DynamicPortStart is the first port of the IANA dynamic/private range.
	DynamicPortStart = 49152
	// DynamicPortEnd is the exclusive upper bound used when probing the
	// dynamic range. 65535 itself is never probed.
	DynamicPortEnd = 65535

	minPort = 1
	maxPort = 65535
)

// ErrNoAvailablePort is returned when every port in the probed range is taken.
var ErrNoAvailablePort = errors.New("no available port")

// LoopbackAddress returns the host:port listen address for a loopback port.
func LoopbackAddress(port int) string {
	return net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
}

// IsAvailable reports whether a TCP listener can currently be bound to the
// loopback address on the given port. The probe listener is closed before
// returning, so the answer is only a snapshot.
func IsAvailable(port int) bool {
	if port < minPort || port > maxPort {
		return false
	}

	listener, err := net.Listen("tcp", LoopbackAddress(port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// FindAvailableInRange probes ports in ascending order over [start, end) and
// returns the first one that can be bound. It returns ErrNoAvailablePort when
// the whole range is taken.
func FindAvailableInRange(start, end int) (int, error) {
	if start < minPort || end > maxPort+1 || start >= end {
		return 0, fmt.Errorf("invalid port range [%d, %d)", start, end)
	}

	for port := start; port < end; port++ {
		if IsAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w in range [%d, %d)", ErrNoAvailablePort, start, end)
}

// PortAllocator hands out free loopback ports from a fixed range. It keeps no
// state between calls: every Allocate re-probes the range.
type PortAllocator struct {
	start int
	end   int
}

// NewPortAllocator creates an allocator over [start, end).
func NewPortAllocator(start, end int) *PortAllocator {
	return &PortAllocator{start: start, end: end}
}

// NewDynamicPortAllocator creates an allocator over the dynamic/private range.
func NewDynamicPortAllocator() *PortAllocator {
	return NewPortAllocator(DynamicPortStart, DynamicPortEnd)
}

// Allocate returns the lowest free port in the allocator's range.
func (a *PortAllocator) Allocate() (int, error) {
	return FindAvailableInRange(a.start, a.end)
}
