package settings

import (
	"context"
	"fmt"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/store"
)

// BuildNumberID is the item id the build-number handler binds to.
const BuildNumberID = "build_number"

// BuildInfo paints the running build's version and commit into the
// build-number row. The row is a dynamic info item: it refreshes at
// page load and again on activation.
type BuildInfo struct {
	Version string
	Commit  string
}

var (
	_ Handler   = (*BuildInfo)(nil)
	_ Refresher = (*BuildInfo)(nil)
)

// Handle repaints the row; an info item has no other behavior.
func (b *BuildInfo) Handle(ctx context.Context, item schema.Item, page *Controller, kv *store.Store) {
	b.Refresh(page)
}

// Refresh publishes the current build string.
func (b *BuildInfo) Refresh(page *Controller) {
	page.UpdateSubtitle(BuildNumberID, b.String())
}

// Cleanup implements Handler; there is nothing to release.
func (b *BuildInfo) Cleanup() {}

func (b *BuildInfo) String() string {
	if b.Commit == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, b.Commit)
}
