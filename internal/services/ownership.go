package services

import "github.com/pandamarket/apiserver/types"

// authorizeMutation is the single ownership predicate applied to every
// mutate/delete operation on an owned resource, regardless of its kind.
//
// It must be evaluated strictly after the resource's existence has been
// confirmed, so that "absent" and "exists but not yours" stay
// distinguishable error kinds.
func authorizeMutation(resource types.Owned, requesterID int64) error {
	if resource.OwnerID() != requesterID {
		return ErrForbidden
	}
	return nil
}
