// Package layout holds the document shell shared by every page.
package layout

//go:generate templ generate

// NavLink is one entry of the top navigation.
type NavLink struct {
	Href  string
	Label string
}

// DefaultNav lists the links shown on every page.
var DefaultNav = []NavLink{
	{Href: "/boxes", Label: "My boxes"},
	{Href: "/boxes/new", Label: "Build a box"},
}
