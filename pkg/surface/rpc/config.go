package rpc

import (
	"errors"
)

// Config is the TLS and dialing configuration of the surface RPC transport.
// Both sides may run without TLS, a partial certificate configuration is
// rejected.
type Config struct {
	// ServerCAs defines the set of root certificate authorities the surface
	// host uses to verify pushing clients.
	ServerCAs        []string `json:"server_cas"`
	ServerKey        string   `json:"server_key"`
	ServerCert       string   `json:"server_cert"`
	ServerSkipVerify bool     `json:"server_skip_verify"`

	// ClientCAs defines the set of root certificate authorities the pushing
	// side uses when verifying the surface host certificate.
	ClientCAs        []string `json:"client_cas"`
	ClientCert       string   `json:"client_cert"`
	ClientKey        string   `json:"client_key"`
	ClientSkipVerify bool     `json:"client_skip_verify"`

	// ConnectTimeout is the maximum amount of time a dial to a surface will
	// wait, in seconds.
	ConnectTimeout uint `json:"connect_timeout"`
}

func (c *Config) Validate() error {
	if err := validateCertPair(c.ServerKey, c.ServerCert, c.ServerSkipVerify, c.ServerCAs, "server"); err != nil {
		return err
	}
	return validateCertPair(c.ClientKey, c.ClientCert, c.ClientSkipVerify, c.ClientCAs, "client")
}

func validateCertPair(key, cert string, skipVerify bool, cas []string, side string) error {
	if (key == "") != (cert == "") {
		return errors.New("incomplete " + side + " certificate configuration")
	}

	// a side that uses TLS and verifies its peer needs CAs to verify against
	if key != "" && cert != "" && !skipVerify && len(cas) == 0 {
		return errors.New("no " + side + " CAs configured")
	}

	return nil
}
