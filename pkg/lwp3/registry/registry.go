// Package registry implements the attach/detach table: on
// HubAttachedIO it instantiates or retires typed peripherals and keeps
// the port⇄peripheral and port⇄name maps current.
package registry

import (
	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/lwp3hub/pkg/lwp3/bytesutil"
	"github.com/srg/lwp3hub/pkg/lwp3/peripheral"
	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// Constructor builds the typed peripheral for a device-type id. devType
// is the id the fallback constructor needs to label an unrecognized
// device; a/b are only meaningful when virtual is true.
type Constructor func(sess peripheral.Session, port byte, devType proto.DeviceType, virtual bool, a, b byte) peripheral.Device

// NameRegistrar is the hub-owned port-name map; the registry updates it
// as virtual ports come and go.
type NameRegistrar interface {
	RegisterVirtualName(virtual, a, b byte)
	UnregisterPortName(port byte)
}

// Registry owns every currently attached peripheral, keyed by port id.
type Registry struct {
	sess     peripheral.Session
	names    NameRegistrar
	logger   *logrus.Logger
	table    map[proto.DeviceType]Constructor
	fallback Constructor

	peripherals *hashmap.Map[byte, peripheral.Device]
}

// New builds a registry bound to sess (for constructing peripherals) and
// names (for virtual-port bookkeeping), using table to resolve
// device-type ids to constructors and fallback for unrecognized types.
func New(sess peripheral.Session, names NameRegistrar, table map[proto.DeviceType]Constructor, fallback Constructor) *Registry {
	return &Registry{
		sess:        sess,
		names:       names,
		logger:      sess.Logger(),
		table:       table,
		fallback:    fallback,
		peripherals: hashmap.New[byte, peripheral.Device](),
	}
}

// Get returns the peripheral attached at port, if any.
func (r *Registry) Get(port byte) (peripheral.Device, bool) {
	return r.peripherals.Get(port)
}

// ByType returns every currently attached peripheral of the given
// device-type id.
func (r *Registry) ByType(t proto.DeviceType) []peripheral.Device {
	var out []peripheral.Device
	r.peripherals.Range(func(_ byte, dev peripheral.Device) bool {
		if dev.Base().DeviceType() == t {
			out = append(out, dev)
		}
		return true
	})
	return out
}

// Len reports how many peripherals are currently attached.
func (r *Registry) Len() int { return r.peripherals.Len() }

// HandleAttachedIO is the hub session's notify-path handler for
// HubAttachedIO.
func (r *Registry) HandleAttachedIO(msg *proto.HubAttachedIO) {
	switch msg.Event {
	case proto.EventDetached:
		r.detach(msg.Port)
	case proto.EventAttached:
		r.attach(msg.Port, msg.DeviceType, false, 0, 0)
		if r.logger != nil {
			hw, _ := versionOrEmpty(msg.HardwareVersion)
			sw, _ := versionOrEmpty(msg.SoftwareVersion)
			r.logger.WithFields(logrus.Fields{
				"port":     msg.Port,
				"type":     msg.DeviceType,
				"hardware": hw,
				"software": sw,
			}).Info("lwp3: peripheral attached")
		}
	case proto.EventAttachedVirtual:
		r.attach(msg.Port, msg.DeviceType, true, msg.PortA, msg.PortB)
		r.names.RegisterVirtualName(msg.Port, msg.PortA, msg.PortB)
	}
}

func (r *Registry) attach(port byte, devType proto.DeviceType, virtual bool, a, b byte) {
	ctor, ok := r.table[devType]
	if !ok {
		ctor = r.fallback
	}
	dev := ctor(r.sess, port, devType, virtual, a, b)
	r.peripherals.Set(port, dev)
}

func (r *Registry) detach(port byte) {
	dev, ok := r.peripherals.Get(port)
	if !ok {
		return
	}
	if dev.Base().IsVirtual() {
		r.names.UnregisterPortName(port)
	}
	dev.Base().Close()
	r.peripherals.Del(port)
}

func versionOrEmpty(b []byte) (string, error) {
	if len(b) < 4 {
		return "", nil
	}
	return bytesutil.Version(b)
}
