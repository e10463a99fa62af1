package settings

import (
	"context"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/store"
	"github.com/heckerdev/cordium/internal/update"
)

// CheckUpdatesID is the item id the update handler binds to.
const CheckUpdatesID = "check_updates"

// AllowInstallKey is the store key that records whether the user has
// granted permission to launch downloaded package installs.
const AllowInstallKey = "allow_install"

// UpdateCheck routes activations of the update row into the self-update
// workflow. The workflow keeps its own state between activations, which
// is what makes the two-tap check-then-download flow work.
type UpdateCheck struct {
	Workflow *update.Workflow
}

var _ Handler = (*UpdateCheck)(nil)

func (u *UpdateCheck) Handle(ctx context.Context, item schema.Item, page *Controller, kv *store.Store) {
	u.Workflow.Trigger(ctx)
}

// Cleanup tears down the workflow's completion watchers.
func (u *UpdateCheck) Cleanup() {
	u.Workflow.Cleanup()
}
