// Package pinning validates server certificate chains against per-host
// pinned certificates.
package pinning

import (
	"bytes"
	"crypto/tls"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
)

// Decision is the outcome of a trust evaluation
type Decision int

const (
	// NoOpinion defers to default trust evaluation
	NoOpinion Decision = iota
	Accept
	Reject
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "noOpinion"
	}
}

// ErrPinMismatch is returned by the TLS hook when a pinned host presents
// no pinned certificate
var ErrPinMismatch = errors.New("certificate pinning: presented chain does not match pinned certificates")

// TrustEvaluator decides whether a host's presented chain is trusted
type TrustEvaluator interface {
	Evaluate(host string, chain [][]byte) Decision
}

// Validator holds an immutable host to pinned-certificate mapping
type Validator struct {
	pins map[string][][]byte
}

// NewValidator creates a validator from DER certificate bytes per host.
// Host names are matched case-insensitively.
func NewValidator(pins map[string][][]byte) *Validator {
	copied := make(map[string][][]byte, len(pins))
	for host, certs := range pins {
		key := normalizeHost(host)
		for _, c := range certs {
			copied[key] = append(copied[key], append([]byte(nil), c...))
		}
	}
	return &Validator{pins: copied}
}

// Load builds a validator from named certificate resources. Any resource
// that fails to load fails the whole construction.
func Load(fsys fs.FS, dir string, resources map[string][]string) (*Validator, error) {
	loader := NewResourceLoader(fsys, dir)

	pins := make(map[string][][]byte, len(resources))
	for host, names := range resources {
		for _, name := range names {
			der, err := loader.Load(name)
			if err != nil {
				return nil, errors.Wrapf(err, "pinning %s", host)
			}
			pins[host] = append(pins[host], der)
		}
	}

	return NewValidator(pins), nil
}

// Hosts returns the pinned host names
func (v *Validator) Hosts() []string {
	hosts := make([]string, 0, len(v.pins))
	for h := range v.pins {
		hosts = append(hosts, h)
	}
	return hosts
}

// Validate compares the presented chain with the host's pinned set
func (v *Validator) Validate(host string, chain [][]byte) Decision {
	pinned, ok := v.pins[normalizeHost(host)]
	if !ok || len(pinned) == 0 {
		return NoOpinion
	}
	if len(chain) == 0 {
		return Reject
	}

	for _, presented := range chain {
		for _, pin := range pinned {
			if bytes.Equal(presented, pin) {
				return Accept
			}
		}
	}
	return Reject
}

// Evaluate implements TrustEvaluator
func (v *Validator) Evaluate(host string, chain [][]byte) Decision {
	return v.Validate(host, chain)
}

// VerifyConnection is a tls.Config.VerifyConnection hook for this validator
func (v *Validator) VerifyConnection(cs tls.ConnectionState) error {
	return VerifyConnectionFunc(v)(cs)
}

// VerifyConnectionFunc adapts an evaluator to tls.Config.VerifyConnection.
// NoOpinion leaves the default verification result in place. The host is the
// negotiated server name, so IP address hosts are never matched; use
// DialTLSContextFunc for those.
func VerifyConnectionFunc(eval TrustEvaluator) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		return verifyHost(eval, cs.ServerName)(cs)
	}
}

func verifyHost(eval TrustEvaluator, host string) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		chain := make([][]byte, 0, len(cs.PeerCertificates))
		for _, cert := range cs.PeerCertificates {
			chain = append(chain, cert.Raw)
		}

		if eval.Evaluate(host, chain) == Reject {
			return errors.Wrapf(ErrPinMismatch, "host %s", host)
		}
		return nil
	}
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
