package models

import "fmt"

// SlotKind identifies one of the six daily duty slots
type SlotKind int

const (
	SlotAM SlotKind = iota
	SlotPM
	SlotAMReserve1
	SlotAMReserve2
	SlotPMReserve1
	SlotPMReserve2
)

// SlotOrder is the order slots are filled within a day
var SlotOrder = [...]SlotKind{
	SlotAM,
	SlotPM,
	SlotAMReserve1,
	SlotAMReserve2,
	SlotPMReserve1,
	SlotPMReserve2,
}

var slotNames = map[SlotKind]string{
	SlotAM:         "AM",
	SlotPM:         "PM",
	SlotAMReserve1: "AMReserve#1",
	SlotAMReserve2: "AMReserve#2",
	SlotPMReserve1: "PMReserve#1",
	SlotPMReserve2: "PMReserve#2",
}

// IsPrimary reports whether the slot consumes monthly duty points
func (k SlotKind) IsPrimary() bool {
	return k == SlotAM || k == SlotPM
}

// IsReserve reports whether the slot is a backup slot
func (k SlotKind) IsReserve() bool {
	return k >= SlotAMReserve1 && k <= SlotPMReserve2
}

// IsAfternoon reports whether the slot belongs to the PM shift
func (k SlotKind) IsAfternoon() bool {
	return k == SlotPM || k == SlotPMReserve1 || k == SlotPMReserve2
}

func (k SlotKind) String() string {
	if name, ok := slotNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SlotKind(%d)", int(k))
}

// MarshalText encodes the slot by name
func (k SlotKind) MarshalText() ([]byte, error) {
	if _, ok := slotNames[k]; !ok {
		return nil, fmt.Errorf("unknown slot kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a slot name
func (k *SlotKind) UnmarshalText(text []byte) error {
	for kind, name := range slotNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown slot kind %q", string(text))
}
