package fixup

// searchWindow is the half-width, in lines, of the fuzzy search
// window around a hunk's expected position.
const searchWindow = 50

// matchThreshold is the minimum fraction of context lines that must
// match for a fuzzy candidate to be accepted.
const matchThreshold = 0.7

// Locator finds a hunk's true starting position in a line buffer that
// may have drifted from the state the diff was generated against.
type Locator struct{}

// NewLocator creates a new Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns the 0-based index in buffer where context begins.
// It first checks expected verbatim (the common case: the diff still
// applies cleanly), then scores every candidate within ±searchWindow
// lines by the fraction of context lines matching at that position.
// The best-scoring candidate wins; ties go to the candidate closest
// to expected, which preserves hunk ordering under small drift. A
// candidate below matchThreshold fails with *NoMatchError.
func (l *Locator) Locate(buffer []string, expected int, context []string) (int, error) {
	if expected < 0 {
		expected = 0
	}

	// A hunk with no anchoring lines (pure addition) lands at the
	// expected position, clamped to the end of the buffer.
	if len(context) == 0 {
		if expected > len(buffer) {
			return len(buffer), nil
		}
		return expected, nil
	}

	if matchesExactly(buffer, expected, context) {
		return expected, nil
	}

	lo := expected - searchWindow
	if lo < 0 {
		lo = 0
	}
	hi := expected + searchWindow
	if hi >= len(buffer) {
		hi = len(buffer) - 1
	}

	bestPos := -1
	bestRatio := 0.0
	bestDist := 0

	for pos := lo; pos <= hi; pos++ {
		matched := 0
		for i, want := range context {
			if pos+i < len(buffer) && buffer[pos+i] == want {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(context))
		dist := pos - expected
		if dist < 0 {
			dist = -dist
		}
		if ratio > bestRatio || (ratio == bestRatio && bestPos >= 0 && dist < bestDist) {
			bestPos = pos
			bestRatio = ratio
			bestDist = dist
		}
	}

	if bestPos < 0 || bestRatio < matchThreshold {
		return 0, &NoMatchError{ExpectedLine: expected + 1, Window: searchWindow}
	}
	return bestPos, nil
}

// matchesExactly reports whether context matches buffer verbatim at pos.
func matchesExactly(buffer []string, pos int, context []string) bool {
	if pos+len(context) > len(buffer) {
		return false
	}
	for i, want := range context {
		if buffer[pos+i] != want {
			return false
		}
	}
	return true
}
