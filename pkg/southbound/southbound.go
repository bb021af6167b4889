// Package southbound defines the boundary between the HAL and the platform
// that actually owns the Linux bridges. Vendors replace the implementation,
// not the interface.
package southbound

import (
	"context"
	"fmt"
)

var ErrUnavailable = fmt.Errorf("southbound dataplane unavailable")

// Dataplane manipulates Linux bridge groups and their 802.1Q member ports.
// Implementations must be safe for concurrent use; the HAL serializes
// mutating calls but read paths run concurrently.
type Dataplane interface {
	BridgeExists(ctx context.Context, name string) (bool, error)
	EnsureBridge(ctx context.Context, name string) error
	DeleteBridge(ctx context.Context, name string) error
	ListBridges(ctx context.Context) ([]BridgeInfo, error)
	BridgePorts(ctx context.Context, bridge string) ([]PortInfo, error)

	// EnsureTaggedPort creates the 802.1Q subinterface ifName.vlanID when
	// missing and enslaves it to bridge. Present and enslaved is success.
	EnsureTaggedPort(ctx context.Context, bridge, ifName string, vlanID uint16) error

	// RemovePort detaches port from bridge. A VLAN subinterface is deleted
	// after detaching; other device kinds are left alone.
	RemovePort(ctx context.Context, bridge, port string) error

	PortInBridge(ctx context.Context, bridge, ifName string, vlanID uint16) (bool, error)
	PortInAnyBridge(ctx context.Context, ifName string, vlanID uint16) (bool, error)

	// SetBridgeAddress assigns an IP prefix ("10.0.0.1/24") to the bridge
	// device. Already assigned is success.
	SetBridgeAddress(ctx context.Context, bridge, prefix string) error

	Close() error
}
