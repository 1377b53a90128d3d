package builder

// progressReporter clamps progress to 0..100 and forwards only increases,
// so consumers see a monotone sequence no matter how the pipeline phases
// overlap at their boundaries.
type progressReporter struct {
	fn   func(int)
	last int
}

func newProgressReporter(fn func(int)) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

// Report forwards pct when it advances progress.
func (r *progressReporter) Report(pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct <= r.last {
		return
	}
	r.last = pct
	if r.fn != nil {
		r.fn(pct)
	}
}
