package amba

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/ambasim/hw"
)

// LineName composes the entity-level name of a bus line, following the
// usual RTL convention of prefixing each line with the bus instance name.
func LineName(bus, line string) string {
	if bus == "" {
		return line
	}

	return bus + "_" + line
}

// BindLine resolves an optional line of a bus. The returned handle is nil if
// the entity does not expose the line.
func BindLine(e hw.Entity, bus, line string) hw.Line {
	l, ok := e.Line(LineName(bus, line))
	if !ok {
		return nil
	}

	return l
}

// MustBindLine resolves a required line of a bus, reporting an error naming
// the missing line if the entity does not expose it.
func MustBindLine(e hw.Entity, bus, line string) (hw.Line, error) {
	l, ok := e.Line(LineName(bus, line))
	if !ok {
		return nil, errors.Errorf(
			"bus %s: required line %s is not present", bus, line)
	}

	return l, nil
}
