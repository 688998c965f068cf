package types

// Owned is the capability shared by every resource with a single owning
// user. Mutation and deletion of an Owned resource require the caller's
// identity to equal OwnerID.
type Owned interface {
	OwnerID() int64
}
