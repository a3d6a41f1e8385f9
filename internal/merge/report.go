package merge

// Outcome is what a merge did with one load order entry.
type Outcome string

const (
	OutcomeContributed   Outcome = "contributed"
	OutcomeNoMusic       Outcome = "no_music"
	OutcomeMissing       Outcome = "missing"
	OutcomeSkippedOutput Outcome = "skipped_output"
)

// Entry is the outcome for one load order path.
type Entry struct {
	Path    string
	Name    string
	Outcome Outcome
	// Records is the number of music records the plugin defines.
	Records int
	// NewRecords counts editor ids first defined by this plugin.
	NewRecords int
	// AddedTracks counts track ids this plugin added to records defined
	// earlier in the load order.
	AddedTracks int
}

// Report summarizes a merge.
type Report struct {
	Entries []Entry
	Masters []string
	Records int
	// Output is the written plugin path; empty until Run writes it.
	Output string
}

// Count returns how many entries ended with outcome.
func (r *Report) Count(outcome Outcome) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Contributors lists the names of plugins that supplied music, in load order.
func (r *Report) Contributors() []string {
	if r == nil {
		return nil
	}
	var names []string
	for _, e := range r.Entries {
		if e.Outcome == OutcomeContributed {
			names = append(names, e.Name)
		}
	}
	return names
}
