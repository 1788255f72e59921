package hub

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Model declares the per-hub-model policy: its system-type id, the
// symbolic port-name map every fresh session starts from, and the list
// of internal ports that must attach before the hub is considered ready.
type Model struct {
	Name          string
	SystemTypeID  byte
	PortNames     map[string]byte
	InternalPorts []byte
}

// Move Hub and Technic Hub system-type ids, as reported in
// HubProperties(SYSTEM_TYPE_ID).
const (
	SystemTypeMoveHub    byte = 0x40
	SystemTypeTechnicHub byte = 0x80
)

// MoveHub is the port layout for the Boost Move Hub.
var MoveHub = Model{
	Name:         "Move Hub",
	SystemTypeID: SystemTypeMoveHub,
	PortNames: map[string]byte{
		"A":            0x00,
		"B":            0x01,
		"C":            0x02,
		"D":            0x03,
		"AB":           0x10,
		"HUB_LED":      0x32,
		"TILT_SENSOR":  0x3A,
		"CURRENT":      0x3B,
		"VOLTAGE":      0x3C,
	},
	InternalPorts: []byte{0x32, 0x3A, 0x3B, 0x3C},
}

// TechnicHub is the port layout for the Control+ / Technic Hub.
var TechnicHub = Model{
	Name:         "Technic Hub",
	SystemTypeID: SystemTypeTechnicHub,
	PortNames: map[string]byte{
		"A":             0x00,
		"B":             0x01,
		"C":             0x02,
		"D":             0x03,
		"HUB_LED":       0x32,
		"CURRENT":       0x3B,
		"VOLTAGE":       0x3C,
		"TEMPERATURE":   0x3D,
		"TEMPERATURE2":  0x3E,
		"ACCELEROMETER": 0x61,
		"GYRO_SENSOR":   0x62,
		"TILT_SENSOR":   0x63,
	},
	InternalPorts: []byte{0x32, 0x3B, 0x3C, 0x3D, 0x3E, 0x61, 0x62, 0x63},
}

// portNameMap tracks the symbolic name of every port, physical and
// virtual, in both directions. The model's names are inserted in Go map
// iteration order, so the internal order varies between runs; only keyed
// lookups are used.
type portNameMap struct {
	names *orderedmap.OrderedMap[string, byte]
	ports *orderedmap.OrderedMap[byte, string]
}

func newPortNameMap(model Model) *portNameMap {
	m := &portNameMap{
		names: orderedmap.New[string, byte](),
		ports: orderedmap.New[byte, string](),
	}
	for name, port := range model.PortNames {
		m.set(name, port)
	}
	return m
}

func (m *portNameMap) set(name string, port byte) {
	m.names.Set(name, port)
	m.ports.Set(port, name)
}

func (m *portNameMap) delete(port byte) {
	if name, ok := m.ports.Get(port); ok {
		m.ports.Delete(port)
		m.names.Delete(name)
	}
}

func (m *portNameMap) portByName(name string) (byte, bool) {
	return m.names.Get(name)
}

func (m *portNameMap) nameByPort(port byte) (string, bool) {
	return m.ports.Get(port)
}

// addVirtual registers the symbolic name of a newly composed virtual
// port as the concatenation of its two composing ports' names:
// "A"+"B" -> "AB".
func (m *portNameMap) addVirtual(virtual byte, a, b byte) {
	nameA, _ := m.nameByPort(a)
	nameB, _ := m.nameByPort(b)
	m.set(nameA+nameB, virtual)
}

