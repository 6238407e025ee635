package rpc

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/silenceper/pool"
	"github.com/ugorji/go/codec"

	"github.com/danl5/gofade/pkg/model"
)

const (
	// initial capacity of the pool
	poolInitCap = 0
	// maximum number of idle connections in the pool
	poolMaxIdle = 5
	// maximum time a connection can be idle before being closed
	poolMaxIdleTime = 15
	// maximum number of connections in the pool
	poolMaxCap = 20
)

// NewSurfaceRPC creates an RPC implementation of model.Surface: the process
// that actually paints runs the server side, the transition side keeps
// pooled client connections and pushes frames.
func NewSurfaceRPC(logger *slog.Logger) (*SurfaceRPC, error) {
	if logger == nil {
		return nil, fmt.Errorf("new surface rpc, logger is nil")
	}

	s := &SurfaceRPC{
		Server: Server{
			logger: logger.With("component", "surface rpc server"),
		},
		Client: Client{
			logger: logger.With("component", "surface rpc client"),
		},
	}

	return s, nil
}

type SurfaceHandler struct {
	CmdHandler model.CommandHandler
}

func (h *SurfaceHandler) Handle(request *model.Request, response *model.Response) error {
	return h.CmdHandler(request, response)
}

func (h *SurfaceHandler) Ping(_ struct{}, reply *string) error {
	*reply = "pong"
	return nil
}

type SurfaceRPC struct {
	Server
	Client
}

// Decode decodes a raw command payload into the target object. Requests and
// responses carry payloads of the any type, the concrete command structures
// are recovered here.
func (s *SurfaceRPC) Decode(raw any, target any) error {
	decodeHook := func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() == reflect.String && f.Kind() == reflect.Slice {
			if bytes, ok := data.([]uint8); ok {
				return string(bytes), nil
			}
		}
		return data, nil
	}

	paramCheck := func(a any) bool {
		t := reflect.TypeOf(a)
		if t.Kind() == reflect.Ptr {
			return !reflect.ValueOf(a).IsNil()
		}

		return false
	}

	if !paramCheck(target) {
		return fmt.Errorf("wrong receiver for decode")
	}

	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: decodeHook,
		Result:     &target,
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return err
	}

	return nil
}

type Server struct {
	surfaceHandler *SurfaceHandler
	logger         *slog.Logger
}

// Start initiates the surface host to begin listening on the specified address.
func (s *Server) Start(listenAddress string, handler model.CommandHandler, serverConfig model.SurfaceConfig) error {
	cfg, ok := serverConfig.(*Config)
	if !ok {
		return errors.New("not a valid surface rpc server config")
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	s.surfaceHandler = &SurfaceHandler{
		CmdHandler: handler,
	}

	err = s.startServer(listenAddress, s.surfaceHandler, cfg)
	if err != nil {
		s.logger.Error("failed to start surface rpc server", "error", err.Error())
		return err
	}

	s.logger.Info("surface rpc server started", "listenAddress", listenAddress)
	return nil
}

func (s *Server) startServer(listenAddress string, handler *SurfaceHandler, cfg *Config) error {
	tlsConfig, err := s.loadTLSConfig(cfg)
	if err != nil {
		return err
	}

	rpcServer := rpc.NewServer()
	err = rpcServer.Register(handler)
	if err != nil {
		return err
	}

	var l net.Listener
	if tlsConfig != nil {
		l, err = tls.Listen("tcp", listenAddress, tlsConfig)
	} else {
		l, err = net.Listen("tcp", listenAddress)
	}
	if err != nil {
		return err
	}

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				s.logger.Error("failed to accept surface rpc connection", "error", err.Error())
				continue
			}

			rpcCodec := codec.MsgpackSpecRpc.ServerCodec(conn, &codec.MsgpackHandle{})
			go rpcServer.ServeCodec(rpcCodec)
		}
	}()
	return nil
}

func (s *Server) loadTLSConfig(cfg *Config) (*tls.Config, error) {
	// if no TLS config is provided, return nil
	if cfg.ServerCert == "" || cfg.ServerKey == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.ServerCert, cfg.ServerKey)
	if err != nil {
		return nil, err
	}
	config := &tls.Config{Certificates: []tls.Certificate{cert}}

	caCertPool := x509.NewCertPool()
	for _, serverCA := range cfg.ServerCAs {
		caCert, err := os.ReadFile(serverCA)
		if err != nil {
			return nil, err
		}
		if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
			return nil, fmt.Errorf("bad CA certificate %s", serverCA)
		}
	}
	config.ClientCAs = caCertPool
	config.ClientAuth = tls.RequireAndVerifyClientCert
	if cfg.ServerSkipVerify {
		config.ClientAuth = tls.NoClientCert
	}

	return config, nil
}

type Client struct {
	// surface id to client connection pool
	// string -> pool.Pool
	clients sync.Map

	logger *slog.Logger
}

// InitConnections initializes a set of connections to the given surfaces.
// It returns an error if any connection fails.
func (c *Client) InitConnections(surfaces []*model.SurfaceNode, clientConfig model.SurfaceConfig) error {
	cfg, ok := clientConfig.(*Config)
	if !ok {
		return errors.New("not a valid surface rpc client config")
	}

	for _, surface := range surfaces {
		if err := surface.Validate(); err != nil {
			return err
		}

		p, err := c.createClient(*surface, cfg)
		if err != nil {
			c.logger.Error("error connecting to surface", "surface", surface.ID)
			return err
		}
		c.clients.Store(surface.ID, p)
	}
	return nil
}

// SendRequest sends the command request to one surface.
func (c *Client) SendRequest(surfaceID string, request *model.Request, response *model.Response) error {
	rpcClient, err := c.getClient(surfaceID)
	if err != nil {
		return err
	}
	if rpcClient == nil {
		return fmt.Errorf("no rpc client found for surface %s", surfaceID)
	}

	err = rpcClient.Call("SurfaceHandler.Handle", request, response)
	if err != nil {
		return fmt.Errorf("failed to call surface handler: %s", err.Error())
	}
	// put back to pool if no error
	defer func() {
		err := c.putClient(surfaceID, rpcClient)
		if err != nil {
			c.logger.Error("failed to put rpc client back to pool", "error", err.Error())
		}
	}()

	c.logger.Debug("send surface request", "command", request.CommandCode.String(), "to", surfaceID)
	return nil
}

func (c *Client) createClient(surface model.SurfaceNode, cfg *Config) (pool.Pool, error) {
	poolConfig := &pool.Config{
		InitialCap:  poolInitCap,
		MaxIdle:     poolMaxIdle,
		MaxCap:      poolMaxCap,
		IdleTimeout: poolMaxIdleTime * time.Second,
		Factory: func() (interface{}, error) {
			tlsConfig, err := c.loadTLSConfig(cfg)
			if err != nil {
				return nil, err
			}
			connectTimeout := time.Duration(cfg.ConnectTimeout) * time.Second
			var conn net.Conn
			dialer := &net.Dialer{
				Timeout: connectTimeout,
			}
			if tlsConfig != nil {
				conn, err = tls.DialWithDialer(dialer, "tcp", surface.Address, tlsConfig)
			} else {
				conn, err = dialer.Dial("tcp", surface.Address)
			}
			if err != nil {
				return nil, err
			}

			rpcCodec := codec.MsgpackSpecRpc.ClientCodec(conn, &codec.MsgpackHandle{})
			return rpc.NewClientWithCodec(rpcCodec), nil
		},
		Close: func(v interface{}) error { return v.(*rpc.Client).Close() },
		Ping: func(v interface{}) error {
			var reply string
			return v.(*rpc.Client).Call("SurfaceHandler.Ping", nil, &reply)
		},
	}
	p, err := pool.NewChannelPool(poolConfig)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (c *Client) getClient(surfaceID string) (*rpc.Client, error) {
	clientPoolInf, ok := c.clients.Load(surfaceID)
	if !ok {
		return nil, fmt.Errorf("no client pool found for surface %s", surfaceID)
	}
	clientPool := clientPoolInf.(pool.Pool)
	conn, err := clientPool.Get()
	if err != nil {
		return nil, fmt.Errorf("can not get client from pool for surface %s: %s", surfaceID, err.Error())
	}

	return conn.(*rpc.Client), nil
}

func (c *Client) putClient(surfaceID string, client *rpc.Client) error {
	clientPoolInf, ok := c.clients.Load(surfaceID)
	if !ok {
		return fmt.Errorf("no client pool found for surface %s", surfaceID)
	}
	clientPool := clientPoolInf.(pool.Pool)
	err := clientPool.Put(client)
	if err != nil {
		return fmt.Errorf("failed to put client back to pool for surface %s: %s", surfaceID, err.Error())
	}

	return nil
}

func (c *Client) loadTLSConfig(cfg *Config) (*tls.Config, error) {
	// if no TLS config is provided, return nil
	if cfg.ClientCert == "" || cfg.ClientKey == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
	if err != nil {
		return nil, err
	}
	config := &tls.Config{Certificates: []tls.Certificate{cert}}

	caCertPool := x509.NewCertPool()
	for _, clientCA := range cfg.ClientCAs {
		caCert, err := os.ReadFile(clientCA)
		if err != nil {
			return nil, err
		}
		if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
			return nil, fmt.Errorf("bad CA certificate %s", clientCA)
		}
	}
	config.RootCAs = caCertPool
	config.InsecureSkipVerify = cfg.ClientSkipVerify

	return config, nil
}
