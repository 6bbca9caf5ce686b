package boxcar

import "github.com/shibaji7/uah/internal/fitacf"

// CellState distinguishes the three ways a neighborhood cell can resolve.
// The distinction matters for the completeness accounting: empty cells count
// toward the total weight but not the present weight, absent cells count
// toward neither.
type CellState int

const (
	// CellAbsent means the cell is structurally impossible: the sweep is
	// missing entirely, or it has no beam with the needed beam number.
	CellAbsent CellState = iota

	// CellEmpty means the beam exists but its slist does not contain the
	// target gate index. Scatter is absent there, not unmeasured.
	CellEmpty

	// CellPresent means the beam exists and carries a measurement at the
	// target gate; Gate holds the snapshot.
	CellPresent
)

// Cell is one resolved neighborhood position.
type Cell struct {
	State CellState
	Gate  fitacf.Gate
}

// Box is the resolved 3x3x3 neighborhood of one (beam, gate) target. Axis 0
// indexes the window time offset, axis 1 the beam offset, axis 2 the gate
// offset, each 0..2 for offsets -1, 0, +1.
type Box [3][3][3]Cell

// buildBox resolves the neighborhood of range gate r on beam bmnum across
// the three-sweep window. A nil scan leaves its nine cells absent. Beam
// lookup within a sweep is linear in beam count.
func buildBox(window [3]*fitacf.Scan, bmnum, r int, variant fitacf.FlagVariant) Box {
	var box Box
	for ti := 0; ti < 3; ti++ {
		s := window[ti]
		if s == nil {
			continue
		}
		for bo := -1; bo <= 1; bo++ {
			tbm := s.FindBeam(bmnum + bo)
			if tbm == nil {
				continue
			}
			for ro := -1; ro <= 1; ro++ {
				cell := &box[ti][bo+1][ro+1]
				if i := slistIndex(tbm.SList, r+ro); i >= 0 {
					cell.State = CellPresent
					cell.Gate = fitacf.NewGate(tbm, i, variant)
				} else {
					cell.State = CellEmpty
				}
			}
		}
	}
	return box
}

// slistIndex returns the position of gate in slist, or -1. Linear scan;
// slists are short and unsorted order must be honored.
func slistIndex(slist []int, gate int) int {
	for i, g := range slist {
		if g == gate {
			return i
		}
	}
	return -1
}
