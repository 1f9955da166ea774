package github

// Tracked is the curated list of repositories shown on the projects
// page. Order here is display order. Descriptions are the fallback
// copy used when the API and the cache both have nothing.
var Tracked = []TrackedRepo{
	{
		Name:        "Portfolio",
		URL:         "https://github.com/davidwrenn/portfolio",
		Description: "This site: a Go backend serving the project directory, art gallery and contact form.",
	},
	{
		Name:        "Pathtracer",
		URL:         "https://github.com/davidwrenn/pathtracer",
		Description: "A weekend path tracer that got out of hand. BVH acceleration, depth of field, PNG output.",
	},
	{
		Name:        "Tidepool",
		URL:         "https://github.com/davidwrenn/tidepool",
		Description: "Falling-sand cellular automaton toy with a terminal renderer.",
	},
	{
		Name:        "Chorewheel",
		URL:         "https://github.com/davidwrenn/chorewheel",
		Description: "Tiny household chore rotation app built for our flat of four.",
	},
	{
		Name:        "Gifguard",
		URL:         "https://github.com/davidwrenn/gifguard",
		Description: "CI bot that rejects pull requests containing GIFs over 2MB. Born of necessity.",
	},
}
