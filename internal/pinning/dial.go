package pinning

import (
	"context"
	"crypto/tls"
	"net"
)

// DialTLSContextFunc returns an http.Transport DialTLSContext that completes
// the handshake itself and evaluates the chain against the dialed host.
// Unlike VerifyConnectionFunc it also works for IP address hosts, which send
// no server name.
func DialTLSContextFunc(base *tls.Config, dialer *net.Dialer, eval TrustEvaluator) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		cfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if base != nil {
			cfg = base.Clone()
		}
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		cfg.VerifyConnection = verifyHost(eval, host)

		d := &tls.Dialer{NetDialer: dialer, Config: cfg}
		return d.DialContext(ctx, network, addr)
	}
}
