package http

// AdminFunc reports whether a chat identity may run admin commands.
type AdminFunc func(userID string) bool

// AllowList builds an AdminFunc from a static list of admin ids.
func AllowList(ids []string) AdminFunc {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return func(userID string) bool {
		_, ok := set[userID]
		return ok
	}
}
