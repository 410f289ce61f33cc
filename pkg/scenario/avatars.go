package scenario

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/dealcraft/sales-engine/pkg/session"
)

// AvatarSelector picks an avatar asset reference for a persona.
// Bootstrap treats this as an external collaborator so the engine
// itself stays deterministic.
type AvatarSelector func(role session.Role, gender string) string

// Avatar art is grouped by decision weight, not by exact role; the
// ids mirror the asset manifest shipped with the client.
var avatarManifest = map[string]map[string][]int{
	"kdm": {
		"male":   {2, 4, 5, 6, 8, 9, 10, 11, 12, 13, 15, 17, 18, 19},
		"female": {1, 2, 3, 4, 5, 7, 8, 9, 10, 11, 12, 13, 14},
	},
	"participant": {
		"male":   {1, 2, 3, 4, 6, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 22, 24, 25},
		"female": {1, 2, 3, 5, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 21, 22},
	},
	"staff": {
		"male":   {1, 3, 4, 5, 7, 8, 9, 10, 11, 12, 13, 15, 17, 18, 19, 20},
		"female": {2, 4, 5, 6, 8, 9, 10, 11, 12, 13, 14},
	},
}

func avatarCategory(role session.Role) string {
	switch role {
	case session.RoleEconomicBuyer, session.RoleTechnicalBuyer:
		return "kdm"
	case session.RoleCoach, session.RoleAntiChampion:
		return "participant"
	default:
		return "staff"
	}
}

// NewAvatarSelector returns a selector drawing from the manifest with
// the given random source.
func NewAvatarSelector(r *rand.Rand) AvatarSelector {
	return func(role session.Role, gender string) string {
		category := avatarCategory(role)
		genderKey := strings.ToLower(gender)
		if genderKey != "female" {
			genderKey = "male"
		}
		ids := avatarManifest[category][genderKey]
		if len(ids) == 0 {
			return "/avatars/default.png"
		}
		id := ids[r.Intn(len(ids))]
		return fmt.Sprintf("/avatars/%s_%s_%02d.png", category, genderKey, id)
	}
}
