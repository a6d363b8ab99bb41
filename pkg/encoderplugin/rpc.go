package encoderplugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// EncoderRPC implements the go-plugin Plugin interface for encoders.
type EncoderRPC struct {
	plugin.Plugin
	Impl Encoder
}

// Server returns an RPC server for this plugin.
func (p *EncoderRPC) Server(*plugin.MuxBroker) (any, error) {
	return &EncoderRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *EncoderRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &EncoderRPCClient{client: c}, nil
}

// EncoderRPCServer is the plugin-side RPC implementation.
type EncoderRPCServer struct {
	Impl Encoder
}

// Encode implements the RPC method for encoding.
func (s *EncoderRPCServer) Encode(req Request, resp *[]byte) error {
	if err := req.Validate(); err != nil {
		return err
	}
	data, err := s.Impl.Encode(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = data
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *EncoderRPCServer) GetMetadata(_ any, resp *Info) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// EncoderRPCClient is the host-side RPC client.
type EncoderRPCClient struct {
	client *rpc.Client
}

// Encode calls the remote Encode method. net/rpc has no cancellation, so ctx
// is only checked before the call is made.
func (c *EncoderRPCClient) Encode(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	if err := c.client.Call("Plugin.Encode", req, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *EncoderRPCClient) GetMetadata() (Info, error) {
	var info Info
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}
