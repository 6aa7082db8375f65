package enumeration

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/limaJavier/mklandscape/pkg/landscape"
	"github.com/samber/lo"
)

type Options struct {
	Hyperplanes bool // Skip whole hyperplanes that contain an improving move
	Reordering  bool // Renumber variables so that moves are resolved as early as possible
}

func DefaultOptions() Options {
	return Options{Hyperplanes: true, Reordering: true}
}

// Enumerator finds every r-bit local optimum of a landscape, i.e. every solution that cannot be improved by flipping r or less bits
type Enumerator struct {
	landscape landscape.Landscape
	length    int
	radius    int
	logger    *slog.Logger

	reference []bool
	fitness   int
	// Every move is a connected set of variables
	moves [][]int
	// Lookup tables to find which moves affect what subfunctions, and vice versa
	moveToSub [][]int
	subToMove [][]int
	bitToSub  [][]int
	// Single-bit move of each variable
	singleBitMoves []int
	// Fitness effect of making each move on the reference solution
	delta []int

	moveToBin  []int
	movesInBin []int // Number of improving moves per bin

	newToOrg []int
	orgToNew []int
}

func NewEnumerator(mk landscape.Landscape, radius int, logger *slog.Logger) (*Enumerator, error) {
	if radius < 1 {
		return nil, fmt.Errorf("radius must be at least 1: %v", radius)
	} else if mk.Length == 0 {
		return nil, errors.New("landscape has no variables")
	}
	if logger == nil {
		logger = slog.Default()
	}

	enumerator := &Enumerator{
		landscape: mk,
		length:    mk.Length,
		radius:    radius,
		logger:    logger,
	}

	enumerator.moves = ConnectedSubsets(BuildGraph(mk), radius)

	enumerator.bitToSub = make([][]int, mk.Length)
	for sub, subfunction := range mk.Subfunctions {
		for _, bit := range subfunction.Variables {
			if !slices.Contains(enumerator.bitToSub[bit], sub) {
				enumerator.bitToSub[bit] = append(enumerator.bitToSub[bit], sub)
			}
		}
	}

	subToMove := make([]map[int]struct{}, len(mk.Subfunctions))
	for sub := range subToMove {
		subToMove[sub] = make(map[int]struct{})
	}
	enumerator.moveToSub = make([][]int, len(enumerator.moves))
	enumerator.singleBitMoves = make([]int, mk.Length)

	for move, bits := range enumerator.moves {
		if len(bits) == 1 {
			enumerator.singleBitMoves[bits[0]] = move
		}
		subs := make(map[int]struct{})
		for _, bit := range bits {
			for _, sub := range enumerator.bitToSub[bit] {
				subs[sub] = struct{}{}
				subToMove[sub][move] = struct{}{}
			}
		}
		enumerator.moveToSub[move] = sortedKeys(subs)
	}
	enumerator.subToMove = lo.Map(subToMove, func(moves map[int]struct{}, _ int) []int {
		return sortedKeys(moves)
	})

	enumerator.delta = make([]int, len(enumerator.moves))
	enumerator.reference = make([]bool, mk.Length)

	logger.Debug("enumerator initialized", "length", mk.Length, "radius", radius, "moves", len(enumerator.moves))
	return enumerator, nil
}

// Moves returns the number of connected moves considered
func (enumerator *Enumerator) Moves() int {
	return len(enumerator.moves)
}

// Enumerate writes every local optimum as "<fitness> <bits>" followed by a "Count: <n> Elapsed: <seconds>" line, returning the count
func (enumerator *Enumerator) Enumerate(out io.Writer, options Options) (uint64, error) {
	start := time.Now()
	writer := bufio.NewWriter(out)
	length := enumerator.length

	for i := range enumerator.reference {
		enumerator.reference[i] = false
	}
	enumerator.initializeDeltas()
	if options.Reordering {
		enumerator.remap()
	} else {
		enumerator.identityMap()
	}
	enumerator.binMoves(options.Hyperplanes)

	var count uint64
	pass := 1
	progress := -1
	line := make([]byte, 0, length+16)
	i := length - 1
	for {
		for i >= 0 && enumerator.movesInBin[i] == 0 {
			i--
		}
		if i == -1 { // Nothing needs to be flipped to be a local optimum
			line = fmt.Appendf(line[:0], "%d ", enumerator.fitness)
			for _, bit := range enumerator.reference {
				line = append(line, lo.Ternary[byte](bit, '1', '0'))
			}
			line = append(line, '\n')
			if _, err := writer.Write(line); err != nil {
				return count, fmt.Errorf("cannot write local optimum: %w", err)
			}
			count++
			i = 0
		}

		// Binary increment starting at position i
		for i < length && enumerator.reference[enumerator.newToOrg[i]] {
			enumerator.makeFlip(enumerator.newToOrg[i])
			i++
		}
		if i >= length {
			break
		}
		enumerator.makeFlip(enumerator.newToOrg[i])

		if i > progress {
			progress = i
			enumerator.logger.Debug("enumeration progress", "pass", pass, "position", i)
			if progress == length-pass {
				progress = -1
				pass++
			}
		}
	}

	elapsed := time.Since(start).Seconds()
	if _, err := fmt.Fprintf(writer, "Count: %d Elapsed: %v\n", count, elapsed); err != nil {
		return count, fmt.Errorf("cannot write summary: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return count, fmt.Errorf("cannot write local optima: %w", err)
	}

	enumerator.logger.Info("enumeration finished", "optima", count, "elapsed", elapsed)
	return count, nil
}

func (enumerator *Enumerator) initializeDeltas() {
	enumerator.fitness = 0
	for move := range enumerator.delta {
		enumerator.delta[move] = 0
	}

	for sub := range enumerator.landscape.Subfunctions {
		score := enumerator.landscape.Evaluate(sub, enumerator.reference)
		enumerator.fitness += score
		// Update the effect each move has on this subfunction
		for _, move := range enumerator.subToMove[sub] {
			enumerator.delta[move] -= score
			enumerator.flipMove(move)
			enumerator.delta[move] += enumerator.landscape.Evaluate(sub, enumerator.reference)
			enumerator.flipMove(move)
		}
	}
}

func (enumerator *Enumerator) flipMove(move int) {
	for _, bit := range enumerator.moves[move] {
		enumerator.reference[bit] = !enumerator.reference[bit]
	}
}

// makeFlip flips a single variable of the reference solution and updates the deltas and bins of every affected move
func (enumerator *Enumerator) makeFlip(index int) int {
	mk := enumerator.landscape
	reference := enumerator.reference
	enumerator.fitness += enumerator.delta[enumerator.singleBitMoves[index]]

	for _, sub := range enumerator.bitToSub[index] {
		preMove := mk.Evaluate(sub, reference)
		reference[index] = !reference[index]
		justMove := mk.Evaluate(sub, reference)
		reference[index] = !reference[index]

		for _, next := range enumerator.subToMove[sub] {
			enumerator.flipMove(next)
			justNext := mk.Evaluate(sub, reference)
			reference[index] = !reference[index]
			moveNext := mk.Evaluate(sub, reference)
			reference[index] = !reference[index]
			enumerator.flipMove(next)

			bin := enumerator.moveToBin[next]
			if enumerator.delta[next] > 0 {
				enumerator.movesInBin[bin]--
			}
			enumerator.delta[next] += preMove - justNext + moveNext - justMove
			if enumerator.delta[next] > 0 {
				enumerator.movesInBin[bin]++
			}
		}
	}

	reference[index] = !reference[index]
	return enumerator.fitness
}

// dependencies returns every variable that influences the delta of move
func (enumerator *Enumerator) dependencies(move int) []int {
	depends := make(map[int]struct{})
	for _, sub := range enumerator.moveToSub[move] {
		for _, bit := range enumerator.landscape.Subfunctions[sub].Variables {
			depends[bit] = struct{}{}
		}
	}
	return sortedKeys(depends)
}

// remap greedily hands out positions from the highest down, always resolving the move with the fewest unassigned dependencies
func (enumerator *Enumerator) remap() {
	length := enumerator.length
	location := make([]int, len(enumerator.moves))
	moveBin := make([]map[int]struct{}, length+1)
	for bin := range moveBin {
		moveBin[bin] = make(map[int]struct{})
	}
	bitToMove := make([][]int, length)

	for move := range enumerator.moves {
		depends := enumerator.dependencies(move)
		moveBin[len(depends)][move] = struct{}{}
		location[move] = len(depends)
		for _, bit := range depends {
			bitToMove[bit] = append(bitToMove[bit], move)
		}
	}

	highestAvailable := length - 1
	enumerator.orgToNew = lo.Times(length, func(_ int) int { return -1 })
	enumerator.newToOrg = lo.Times(length, func(_ int) int { return -1 })

	assign := func(bit int) {
		enumerator.orgToNew[bit] = highestAvailable
		enumerator.newToOrg[highestAvailable] = bit
		highestAvailable--
	}

	for highestAvailable >= 0 {
		clear(moveBin[0]) // Moves without unassigned dependencies are already resolved
		move := -1
		for _, bin := range moveBin[1:] {
			if len(bin) > 0 {
				move = lo.Min(lo.Keys(bin))
				break
			}
		}
		if move == -1 {
			break
		}

		for _, sub := range enumerator.moveToSub[move] {
			for _, bit := range enumerator.landscape.Subfunctions[sub].Variables {
				if enumerator.orgToNew[bit] != -1 {
					continue
				}
				assign(bit)
				for _, affected := range bitToMove[bit] {
					current := location[affected]
					delete(moveBin[current], affected)
					moveBin[current-1][affected] = struct{}{}
					location[affected] = current - 1
				}
			}
		}
	}

	// Variables outside every subfunction take the lowest positions
	for bit := 0; bit < length; bit++ {
		if enumerator.orgToNew[bit] == -1 {
			assign(bit)
		}
	}
}

func (enumerator *Enumerator) identityMap() {
	enumerator.orgToNew = lo.Range(enumerator.length)
	enumerator.newToOrg = lo.Range(enumerator.length)
}

// binMoves assigns each move to the lowest position it depends on; without hyperplanes every move shares bin 0
func (enumerator *Enumerator) binMoves(hyperplanes bool) {
	length := enumerator.length
	enumerator.moveToBin = make([]int, len(enumerator.moves))
	enumerator.movesInBin = make([]int, length+1) // Moves without subfunctions land in bin "length"

	for move := range enumerator.moves {
		bin := 0
		if hyperplanes {
			bin = length
			for _, bit := range enumerator.dependencies(move) {
				bin = min(bin, enumerator.orgToNew[bit])
			}
		}
		enumerator.moveToBin[move] = bin
		if enumerator.delta[move] > 0 {
			enumerator.movesInBin[bin]++
		}
	}
}

func sortedKeys(set map[int]struct{}) []int {
	keys := lo.Keys(set)
	slices.Sort(keys)
	return keys
}
