package service

import "github.com/kavyand/vidstream/internal/utils"

// AssertOwner is the single authorization predicate applied by every
// mutate/delete on comments, tweets, playlists and videos. Callers must
// confirm the resource exists first: a 404 for a missing resource takes
// precedence over the 403 returned here. There is no admin override.
func AssertOwner(ownerID, actorID uint64) error {
	if ownerID != actorID {
		return utils.Forbidden("you do not own this resource")
	}
	return nil
}
