package oauth

import "strings"

// Scope is a single X API access scope token.
type Scope string

const (
	ScopeTweetRead          Scope = "tweet.read"
	ScopeTweetWrite         Scope = "tweet.write"
	ScopeTweetModerateWrite Scope = "tweet.moderate.write"
	ScopeUsersEmail         Scope = "users.email"
	ScopeUsersRead          Scope = "users.read"
	ScopeFollowsRead        Scope = "follows.read"
	ScopeFollowsWrite       Scope = "follows.write"
	ScopeOfflineAccess      Scope = "offline.access"
	ScopeSpaceRead          Scope = "space.read"
	ScopeMuteRead           Scope = "mute.read"
	ScopeMuteWrite          Scope = "mute.write"
	ScopeLikeRead           Scope = "like.read"
	ScopeLikeWrite          Scope = "like.write"
	ScopeListRead           Scope = "list.read"
	ScopeListWrite          Scope = "list.write"
	ScopeBlockRead          Scope = "block.read"
	ScopeBlockWrite         Scope = "block.write"
	ScopeBookmarkRead       Scope = "bookmark.read"
	ScopeBookmarkWrite      Scope = "bookmark.write"
	ScopeMediaWrite         Scope = "media.write"
)

// Scopes is an ordered scope list.
type Scopes []Scope

// Common presets for the timeline client.
var (
	// ReadTimeline covers fetching the home timeline and resolving authors.
	ReadTimeline = Scopes{ScopeTweetRead, ScopeUsersRead}
	// ReadTimelineOffline additionally requests a refresh token so the
	// session survives access token expiry.
	ReadTimelineOffline = Scopes{ScopeTweetRead, ScopeUsersRead, ScopeOfflineAccess}
)

// String joins the scopes with spaces, the form the authorize endpoint
// expects.
func (s Scopes) String() string {
	parts := make([]string, len(s))
	for i, scope := range s {
		parts[i] = string(scope)
	}
	return strings.Join(parts, " ")
}
