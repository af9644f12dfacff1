package mutation

// Tombstone is a deletion marker. Timestamp establishes precedence against
// live cells; DeletedAt records when the deletion happened (seconds). The
// zero value means "no tombstone".
type Tombstone struct {
	Timestamp int64
	DeletedAt int64
}

// Present reports whether the tombstone marks an actual deletion.
func (t Tombstone) Present() bool {
	return t != Tombstone{}
}

// Apply keeps whichever of the two tombstones has deletion precedence.
func (t *Tombstone) Apply(other Tombstone) {
	if !t.Present() || (other.Present() && other.Timestamp > t.Timestamp) {
		*t = other
	}
}
