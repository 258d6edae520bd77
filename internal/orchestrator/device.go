package orchestrator

import (
	"polyfield-edm/internal/protocol"
	"polyfield-edm/internal/serialtransport"
)

// DeviceProvider resolves a device id to its open transport handle and
// translator. It is the Orchestrator's seam onto C2/C3; tests substitute a
// fake provider, production wires one backed by serialtransport.Open and
// protocol.Registry.
type DeviceProvider interface {
	Handle(deviceID string) (*serialtransport.Handle, protocol.Translator, error)
}

// StaticDeviceProvider is a DeviceProvider over a fixed, pre-opened set of
// handles — the common case for a field kit where each device type (EDM,
// wind gauge) is connected once at startup and held for the session.
type StaticDeviceProvider struct {
	handles     map[string]*serialtransport.Handle
	translators map[string]protocol.Translator
}

// NewStaticDeviceProvider builds a StaticDeviceProvider with no devices
// registered; call Register for each connected device.
func NewStaticDeviceProvider() *StaticDeviceProvider {
	return &StaticDeviceProvider{
		handles:     make(map[string]*serialtransport.Handle),
		translators: make(map[string]protocol.Translator),
	}
}

// Register associates deviceID with an open handle and its translator.
func (p *StaticDeviceProvider) Register(deviceID string, h *serialtransport.Handle, t protocol.Translator) {
	p.handles[deviceID] = h
	p.translators[deviceID] = t
}

// Unregister removes and closes deviceID's handle, if any.
func (p *StaticDeviceProvider) Unregister(deviceID string) error {
	h, ok := p.handles[deviceID]
	if !ok {
		return nil
	}
	delete(p.handles, deviceID)
	delete(p.translators, deviceID)
	return h.Close()
}

func (p *StaticDeviceProvider) Handle(deviceID string) (*serialtransport.Handle, protocol.Translator, error) {
	h, ok := p.handles[deviceID]
	if !ok {
		return nil, nil, &PortUnavailableError{DeviceID: deviceID}
	}
	return h, p.translators[deviceID], nil
}

// PortUnavailableError reports that a device id has no open transport.
type PortUnavailableError struct {
	DeviceID string
}

func (e *PortUnavailableError) Error() string {
	return "orchestrator: no open port for device " + e.DeviceID
}
