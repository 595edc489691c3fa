package main

import "resourcebot/internal/format"

type AddResourceCmd struct{}

func (c *AddResourceCmd) Execute(app *AppContext, q Query, cc *ChannelContext) {
	r := Resource{
		Resource:    q.Get("resource"),
		Region:      q.Get("region"),
		Island:      q.Get("island"),
		Description: q.Get("description"),
	}
	id, err := app.Store.Create(cc.Context(), r)
	if err != nil {
		cc.Fail(err)
		return
	}
	r.ID = id
	cc.Logger().Info("Resource added", "id", id, "resource", r.Resource)
	cc.Post(format.EchoBlock("Added Resource", r))
}
func (c *AddResourceCmd) Description() string { return "Track a new resource" }

type EditResourceCmd struct{}

func (c *EditResourceCmd) Execute(app *AppContext, q Query, cc *ChannelContext) {
	id, err := q.Int("id")
	if err != nil {
		cc.Fail(err)
		return
	}
	r := Resource{
		ID:          id,
		Resource:    q.Get("resource"),
		Region:      q.Get("region"),
		Island:      q.Get("island"),
		Description: q.Get("description"),
	}
	if err := app.Store.Update(cc.Context(), r); err != nil {
		cc.Fail(err)
		return
	}
	cc.Logger().Info("Resource updated", "id", id)
	cc.Post(format.EchoBlock("Updated Resource", r))
}
func (c *EditResourceCmd) Description() string { return "Replace every field of a resource" }

// RemoveResourceCmd deletes a row without replying; the outcome only goes to
// the local log.
type RemoveResourceCmd struct{}

func (c *RemoveResourceCmd) Execute(app *AppContext, q Query, cc *ChannelContext) {
	id, err := q.Int("id")
	if err != nil {
		cc.Fail(err)
		return
	}
	if err := app.Store.Delete(cc.Context(), id); err != nil {
		cc.Logger().Error("Failed to remove resource", "id", id, "err", err)
		return
	}
	cc.Logger().Info("Resource removed", "id", id)
}
func (c *RemoveResourceCmd) Description() string { return "Delete a resource" }

type WhereIsCmd struct{}

func (c *WhereIsCmd) Execute(app *AppContext, q Query, cc *ChannelContext) {
	rows, err := app.Store.FindBySubstring(cc.Context(), q.Get("resource"))
	if err != nil {
		cc.Fail(err)
		return
	}
	cc.PostResults(rows)
}
func (c *WhereIsCmd) Description() string { return "Find resources by name" }

type ListResourcesCmd struct{}

func (c *ListResourcesCmd) Execute(app *AppContext, _ Query, cc *ChannelContext) {
	rows, err := app.Store.ListAll(cc.Context())
	if err != nil {
		cc.Fail(err)
		return
	}
	cc.PostResults(rows)
}
func (c *ListResourcesCmd) Description() string { return "List every resource" }
