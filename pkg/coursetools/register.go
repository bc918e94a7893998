package coursetools

import (
	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
)

// Register adds the search and outline tools for store to reg.
func Register(reg *tools.Registry, store coursestore.Store) error {
	if err := reg.Register(NewSearchTool(store)); err != nil {
		return err
	}
	return reg.Register(NewOutlineTool(store))
}
