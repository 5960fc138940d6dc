package meeting

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderLink synthesizes a join URL matching the platform's known URL
// shape. These links are cosmetic only: they point at no live meeting and are
// used whenever no authenticated provider session can create a real one.
func PlaceholderLink(p Platform) string {
	switch p {
	case PlatformZoom:
		return fmt.Sprintf("https://zoom.us/j/%d", rand.N(int64(1_000_000_000)))
	case PlatformTeams:
		return "https://teams.microsoft.com/l/meetup-join/" + linkToken()
	case PlatformMeet:
		return "https://meet.google.com/" + linkToken()
	}
	return ""
}

func linkToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
