package types

// Build progress milestones. A build reports integer percentages that move
// through discovery (0-5), extraction (5-50), embedding (50-95), and
// persistence (95-100). Values are monotonically non-decreasing within a
// single build.
const (
	ProgressStart      = 0
	ProgressDiscovered = 5
	ProgressExtracted  = 50
	ProgressEmbedded   = 95
	ProgressDone       = 100
)

// ProgressPhase names the build phase a progress percentage falls in.
// Useful for status lines driven by a progress stream.
func ProgressPhase(pct int) string {
	switch {
	case pct < ProgressDiscovered:
		return "discovering"
	case pct < ProgressExtracted:
		return "extracting"
	case pct < ProgressEmbedded:
		return "embedding"
	case pct < ProgressDone:
		return "persisting"
	default:
		return "complete"
	}
}
