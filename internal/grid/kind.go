package grid

import (
	"fmt"
	"strings"
)

// UnitKind names what occupies a cell. UnitNone is an empty cell.
type UnitKind uint8

const (
	UnitNone UnitKind = iota
	UnitBelt
	UnitCurve
	UnitJunction
	UnitMachine
	UnitPipe
)

var kindNames = [...]string{"none", "belt", "curve", "junction", "machine", "pipe"}

func (k UnitKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsBelt is true for straight and curved conveyor segments.
func (k UnitKind) IsBelt() bool { return k == UnitBelt || k == UnitCurve }

func ParseUnitKind(s string) (UnitKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if i > 0 && n == s {
			return UnitKind(i), nil
		}
	}
	return UnitNone, fmt.Errorf("unknown unit kind %q", s)
}

func (k *UnitKind) UnmarshalText(b []byte) error {
	v, err := ParseUnitKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k UnitKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
