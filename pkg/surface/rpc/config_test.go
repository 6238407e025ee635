package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "empty configuration",
			config: Config{},
		},
		{
			name: "incomplete server certificate configuration",
			config: Config{
				ServerKey: "key.pem",
			},
			wantErr: "incomplete server certificate configuration",
		},
		{
			name: "no server CAs configured",
			config: Config{
				ServerKey:  "cert.key",
				ServerCert: "cert.pem",
			},
			wantErr: "no server CAs configured",
		},
		{
			name: "server skip verify needs no CAs",
			config: Config{
				ServerKey:        "cert.key",
				ServerCert:       "cert.pem",
				ServerSkipVerify: true,
			},
		},
		{
			name: "incomplete client certificate configuration",
			config: Config{
				ClientCert: "cert.pem",
			},
			wantErr: "incomplete client certificate configuration",
		},
		{
			name: "no client CAs configured",
			config: Config{
				ClientKey:  "client.key",
				ClientCert: "client.pem",
			},
			wantErr: "no client CAs configured",
		},
		{
			name: "valid full configuration",
			config: Config{
				ServerKey:  "key.pem",
				ServerCert: "cert.pem",
				ServerCAs:  []string{"ca.pem"},
				ClientKey:  "client.key",
				ClientCert: "client.pem",
				ClientCAs:  []string{"ca.pem"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
