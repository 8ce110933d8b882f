package domain

// Status is the terminal state of tinifying one archive.
type Status string

const (
	// StatusRebuilt indicates a smaller archive was written.
	StatusRebuilt Status = "rebuilt"
	// StatusSkipped indicates the archive was left untouched and nothing was written.
	StatusSkipped Status = "skipped"
)

// ReasonNotCompiled is the skip reason for releases without compiled packages.
const ReasonNotCompiled = "not a compiled release"

// Outcome describes what happened to one archive.
type Outcome struct {
	Status     Status
	Reason     string
	Input      string
	Output     string
	Redundant  []string
	InputSize  int64
	OutputSize int64
	Digest     string
}

// Skipped returns a skipped outcome for input.
func Skipped(input, reason string) *Outcome {
	return &Outcome{Status: StatusSkipped, Reason: reason, Input: input}
}

// Reduction returns the size reduction as a percentage of the input size.
func (o *Outcome) Reduction() float64 {
	if o.InputSize <= 0 {
		return 0
	}
	return 100 - 100*float64(o.OutputSize)/float64(o.InputSize)
}

// ReleaseOutcome is the outcome of one release inside a tile.
type ReleaseOutcome struct {
	Name string
	Outcome
}

// TileOutcome describes what happened to a tile and each release inside it.
type TileOutcome struct {
	Outcome
	Releases []ReleaseOutcome
}

// Rebuilt returns the number of releases that were rebuilt.
func (t *TileOutcome) Rebuilt() int {
	n := 0
	for _, r := range t.Releases {
		if r.Status == StatusRebuilt {
			n++
		}
	}
	return n
}
