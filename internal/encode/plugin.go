package encode

import (
	"context"
	"fmt"
	"image"
	"os/exec"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	imgutil "github.com/jmylchreest/duotone/internal/image"
	"github.com/jmylchreest/duotone/pkg/encoderplugin"
)

// remoteEncoder is the subset of the RPC client PluginEncoder uses.
type remoteEncoder interface {
	Encode(ctx context.Context, req encoderplugin.Request) ([]byte, error)
	GetMetadata() (encoderplugin.Info, error)
}

// PluginEncoder delegates encoding to an external go-plugin executable.
// The plugin process is started lazily on first use and reused until Close.
type PluginEncoder struct {
	path   string
	logger hclog.Logger

	mu     sync.Mutex
	client *plugin.Client
	remote remoteEncoder
}

// NewPluginEncoder creates an encoder backed by the plugin at path. A nil
// logger discards plugin output.
func NewPluginEncoder(path string, logger hclog.Logger) *PluginEncoder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginEncoder{
		path:   path,
		logger: logger.Named("encoder-plugin"),
	}
}

// Encode implements Encoder.
func (e *PluginEncoder) Encode(ctx context.Context, img image.Image, format Format, quality float64) (*Encoded, error) {
	remote, err := e.connect()
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = imgutil.Snapshot(img)
	}

	e.logger.Debug("encoding", "format", format, "quality", quality,
		"width", nrgba.Rect.Dx(), "height", nrgba.Rect.Dy())

	data, err := remote.Encode(ctx, encoderplugin.NewRequest(nrgba, string(format), quality))
	if err != nil {
		return nil, &EncodeError{Format: format, Quality: quality, Err: err}
	}
	if len(data) == 0 {
		return nil, &EncodeError{Format: format, Quality: quality, Err: fmt.Errorf("plugin returned no data")}
	}

	if !format.Lossy() {
		quality = 1
	}
	return &Encoded{Data: data, Format: format, Quality: quality}, nil
}

// Info returns the plugin's metadata, starting it if necessary.
func (e *PluginEncoder) Info() (encoderplugin.Info, error) {
	remote, err := e.connect()
	if err != nil {
		return encoderplugin.Info{}, err
	}
	return remote.GetMetadata()
}

// Close stops the plugin process.
func (e *PluginEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.remote = nil
	}
}

func (e *PluginEncoder) connect() (remoteEncoder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.remote != nil {
		return e.remote, nil
	}

	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: encoderplugin.Handshake,
		Plugins: map[string]plugin.Plugin{
			encoderplugin.PluginName: &encoderplugin.EncoderRPC{},
		},
		Cmd:              exec.Command(e.path), // #nosec G204 - User-specified encoder plugin path
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to start encoder plugin %s: %w", e.path, err)
	}

	raw, err := rpcClient.Dispense(encoderplugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense encoder plugin: %w", err)
	}

	remote, ok := raw.(*encoderplugin.EncoderRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("encoder plugin returned unexpected type %T", raw)
	}

	info, err := checkRemote(remote)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, err
	}
	e.logger.Debug("encoder plugin connected", "name", info.Name, "version", info.Version,
		"protocol", info.ProtocolVersion)

	e.remote = remote
	return remote, nil
}

// checkRemote fetches the plugin's metadata and rejects protocol versions
// this host cannot talk to.
func checkRemote(remote remoteEncoder) (encoderplugin.Info, error) {
	info, err := remote.GetMetadata()
	if err != nil {
		return info, fmt.Errorf("failed to query encoder plugin metadata: %w", err)
	}
	if err := encoderplugin.CheckCompatible(info.ProtocolVersion); err != nil {
		return info, fmt.Errorf("encoder plugin %s: %w", info.Name, err)
	}
	return info, nil
}
