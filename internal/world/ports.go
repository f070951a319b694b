package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

// ErrPortLayout reports a port list that breaks the balance rules.
var ErrPortLayout = errors.New("port layout")

// PortSkips is the gap, in coastline edges, from each port to the next. Nine
// ports cover the thirty coast edges as 3/4/3 three times over.
var PortSkips = [9]int{3, 4, 3, 3, 4, 3, 3, 4, 3}

// PortDeck is the port multiset: four generic and one of each resource.
var PortDeck = [9]PortType{
	PortGeneric, PortGeneric, PortGeneric, PortGeneric,
	PortWood, PortBrick, PortSheep, PortWheat, PortOre,
}

// PortSlots picks the coast edges that get a port, in clockwise order.
func PortSlots(b *Board) []EdgeKey {
	coast := b.BoundaryEdges()
	if len(coast) == 0 {
		return nil
	}
	slots := make([]EdgeKey, 0, len(PortSkips))
	at := 0
	for _, skip := range PortSkips {
		slots = append(slots, coast[at%len(coast)])
		at += skip
	}
	return slots
}

// PlacePorts deals the port deck onto the slots. The deck is reshuffled up
// to maxShuffles times until no three generic ports sit in a row around the
// coast; if that fails the local repair pass fixes the last shuffle.
func PlacePorts(b *Board, rng *rand.Rand, maxShuffles int) []Port {
	slots := PortSlots(b)
	if len(slots) != len(PortDeck) {
		slog.Error("unexpected coastline", "slots", len(slots))
		return nil
	}

	types := PortDeck
	ok := false
	for attempt := 0; attempt < max(1, maxShuffles); attempt++ {
		rng.Shuffle(len(types), func(i, j int) {
			types[i], types[j] = types[j], types[i]
		})
		if genericRun(types[:]) < 0 {
			ok = true
			break
		}
	}
	if !ok {
		slog.Debug("port shuffles exhausted, repairing", "attempts", maxShuffles)
		repairPorts(types[:])
	}

	ports := make([]Port, len(slots))
	for i, e := range slots {
		ports[i] = Port{Coord: e.Tile(), Dir: e.Dir, Type: types[i]}
	}
	return ports
}

// genericRun returns the start of the first cyclic run of three generic
// ports, or -1 if there is none.
func genericRun(types []PortType) int {
	n := len(types)
	for i := 0; i < n; i++ {
		if types[i] == PortGeneric &&
			types[(i+1)%n] == PortGeneric &&
			types[(i+2)%n] == PortGeneric {
			return i
		}
	}
	return -1
}

// repairPorts breaks every run of three generic ports by swapping the third
// one with the nearest specific port, searching forward before backward at
// each distance.
func repairPorts(types []PortType) {
	n := len(types)
	for pass := 0; pass < n*n; pass++ {
		start := genericRun(types)
		if start < 0 {
			return
		}
		third := (start + 2) % n
		for dist := 1; dist < n; dist++ {
			fwd := (third + dist) % n
			if types[fwd] != PortGeneric {
				types[third], types[fwd] = types[fwd], types[third]
				break
			}
			back := (third - dist + n) % n
			if types[back] != PortGeneric {
				types[third], types[back] = types[back], types[third]
				break
			}
		}
	}
}

// ValidatePorts checks the port count, the deck composition and the
// no-three-generic rule.
func ValidatePorts(ports []Port) error {
	if len(ports) != len(PortDeck) {
		return fmt.Errorf("%w: %d ports, want %d", ErrPortLayout, len(ports), len(PortDeck))
	}
	counts := make(map[PortType]int)
	types := make([]PortType, len(ports))
	for i, p := range ports {
		counts[p.Type]++
		types[i] = p.Type
	}
	if counts[PortGeneric] != 4 {
		return fmt.Errorf("%w: %d generic ports, want 4", ErrPortLayout, counts[PortGeneric])
	}
	for t := PortWood; t <= PortOre; t++ {
		if counts[t] != 1 {
			return fmt.Errorf("%w: %d %s ports, want 1", ErrPortLayout, counts[t], t)
		}
	}
	if i := genericRun(types); i >= 0 {
		return fmt.Errorf("%w: three generic ports in a row from slot %d", ErrPortLayout, i)
	}
	return nil
}
