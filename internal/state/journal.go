package state

// Journal is the undo log shared by every store of one world. Stores append an
// undo entry before each mutation so a unit of work can be rolled back to a snapshot.
type Journal struct {
	entries []func()
}

func NewJournal() *Journal {
	return &Journal{entries: make([]func(), 0)}
}

func (j *Journal) Append(undo func()) {
	j.entries = append(j.entries, undo)
}

func (j *Journal) Snapshot() int {
	return len(j.entries)
}

// RevertTo undoes every entry recorded after snapshot, newest first.
func (j *Journal) RevertTo(snapshot int) {
	if snapshot < 0 {
		snapshot = 0
	}
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i]()
	}
	if snapshot < len(j.entries) {
		j.entries = j.entries[:snapshot]
	}
}

// Reset forgets all entries, making the current state permanent.
func (j *Journal) Reset() {
	j.entries = j.entries[:0]
}

func (j *Journal) Len() int {
	return len(j.entries)
}
