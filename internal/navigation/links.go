package navigation

import "github.com/travelia-app/travelia-backend/pkg/enums"

// Link is one navigation chrome entry.
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// linksByRole is a fixed lookup table; roles never gain links dynamically.
var linksByRole = map[enums.Role][]Link{
	enums.RoleUser: {
		{Label: "Home", Path: "/"},
		{Label: "Activities", Path: "/activities"},
		{Label: "Promos", Path: "/promos"},
		{Label: "Cart", Path: "/cart"},
		{Label: "My Transactions", Path: "/my-transactions"},
	},
	enums.RoleAdmin: {
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Activities", Path: "/dashboard/activities"},
		{Label: "Banners", Path: "/dashboard/banners"},
		{Label: "Promos", Path: "/dashboard/promos"},
		{Label: "Transactions", Path: "/dashboard/transactions"},
		{Label: "Users", Path: "/dashboard/users"},
	},
}

// LinksFor returns the navigation set for a role. Unknown roles fall back to
// the user set.
func LinksFor(role enums.Role) []Link {
	if links, ok := linksByRole[role]; ok {
		return links
	}
	return linksByRole[enums.RoleUser]
}
