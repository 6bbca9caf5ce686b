package fitacf

// AssembleScans groups a time-ordered beam stream into scans on the
// scan-boundary flag. A beam whose scan flag is set and whose timestamp
// differs from the previous beam's starts a new scan; beams that repeat the
// boundary timestamp stay with the current scan (interleaved channels report
// the boundary more than once). Every produced scan has recomputed time
// bounds and averaged parameters.
func AssembleScans(beams []*Beam, stype string) []*Scan {
	if len(beams) == 0 {
		return nil
	}
	var scans []*Scan
	cur := NewScan(stype)
	cur.Beams = append(cur.Beams, beams[0])
	for i, b := range beams[1:] {
		prev := beams[i]
		if b.ScanFlag != 0 && !b.Time.Equal(prev.Time) {
			cur.UpdateTime()
			scans = append(scans, cur)
			cur = NewScan(stype)
		}
		cur.Beams = append(cur.Beams, b)
	}
	cur.UpdateTime()
	scans = append(scans, cur)
	return scans
}
