package models

// Dataset is a bundle of records loaded together into a store, used for
// development seeding and test fixtures.
type Dataset struct {
	Categories []Category
	Posts      []Post
	Snapshots  []Snapshot
	Counters   []Counter
}
