package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Protocol identifies the transport used to probe an endpoint.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// ParseProtocol normalizes a configuration value into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(s)); p {
	case ProtocolTCP, ProtocolUDP:
		return p, nil
	default:
		return "", fmt.Errorf("unknown protocol %q", s)
	}
}

// Endpoint identifies a monitored host/port/protocol triple. Name is a
// display label only and is not part of the endpoint identity.
type Endpoint struct {
	Name     string   `json:"name"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Protocol Protocol `json:"protocol"`
}

// Key returns the endpoint identity, host:port/protocol.
func (e Endpoint) Key() string {
	return e.Addr() + "/" + string(e.Protocol)
}

// Addr returns the dialable host:port address.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	if e.Name == "" {
		return e.Key()
	}

	return e.Name + " (" + e.Key() + ")"
}

// Status is the tracked availability of an endpoint.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

// StatusFromReachable maps a probe outcome onto a Status.
func StatusFromReachable(reachable bool) Status {
	if reachable {
		return StatusUp
	}

	return StatusDown
}

// FailureCategory classifies why a probe found an endpoint unreachable.
type FailureCategory string

const (
	FailureNone       FailureCategory = ""
	FailureRefused    FailureCategory = "refused"
	FailureTimeout    FailureCategory = "timeout"
	FailureUnresolved FailureCategory = "unresolved"
	FailureOther      FailureCategory = "other"
)

// CheckResult is the outcome of a single reachability probe.
type CheckResult struct {
	Endpoint  Endpoint
	Reachable bool
	RespTime  time.Duration
	CheckedAt time.Time
	Category  FailureCategory
	Err       error
}

// StatusChange records an observed availability transition for an endpoint.
type StatusChange struct {
	Endpoint Endpoint
	Previous Status
	Current  Status
	RespTime time.Duration
	At       time.Time
}
