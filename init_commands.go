package main

func SetupCommandRegistry() *CommandRegistry {
	r := NewCommandRegistry()

	// Resources
	r.Register("addResource", []string{"resource", "region", "island", "description"}, &AddResourceCmd{})
	r.Register("editResource", []string{"id", "resource", "region", "island", "description"}, &EditResourceCmd{})
	r.Register("removeResource", []string{"id"}, &RemoveResourceCmd{})
	r.Register("whereIs", []string{"resource"}, &WhereIsCmd{})
	r.RegisterRaw("listResources", &ListResourcesCmd{})

	// Tools
	r.RegisterRaw("ping", &PingCmd{})

	return r
}
