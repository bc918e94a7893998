package cmds

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/mb0/glob"
	"github.com/pkg/errors"
)

type CoursesSettings struct {
	Match   string `glazed.parameter:"match"`
	Outline bool   `glazed.parameter:"outline"`
}

type CoursesCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*CoursesCommand)(nil)

func NewCoursesCommand() (*CoursesCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create Glazed parameter layer")
	}

	return &CoursesCommand{
		CommandDescription: cmds.NewCommandDescription(
			"courses",
			cmds.WithShort("List indexed courses"),
			cmds.WithLong("List the course titles of the index. With --outline, emit one row per lesson."),
			cmds.WithFlags(
				parameters.NewParameterDefinition(
					"match",
					parameters.ParameterTypeString,
					parameters.WithHelp("Only list titles matching this glob"),
					parameters.WithDefault(""),
				),
				parameters.NewParameterDefinition(
					"outline",
					parameters.ParameterTypeBool,
					parameters.WithHelp("Emit the lessons of each course"),
					parameters.WithDefault(false),
				),
			),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *CoursesCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	s := &CoursesSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "error initializing settings")
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	titles, err := a.Store.CourseTitles(ctx)
	if err != nil {
		return err
	}
	titles, err = filterTitles(titles, s.Match)
	if err != nil {
		return err
	}

	rows, err := courseRows(ctx, a.Store, titles, s.Outline)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func filterTitles(titles []string, pattern string) ([]string, error) {
	if pattern == "" {
		return titles, nil
	}
	var ret []string
	for _, t := range titles {
		ok, err := glob.Match(pattern, t)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, t)
		}
	}
	return ret, nil
}

// courseRows emits one row per title, or with outline one row per lesson.
// A course without lessons still gets a row.
func courseRows(ctx context.Context, store coursestore.CatalogReader, titles []string, outline bool) ([]types.Row, error) {
	var rows []types.Row
	for _, t := range titles {
		if !outline {
			rows = append(rows, types.NewRow(types.MRP("title", t)))
			continue
		}
		c, err := store.CourseMetadata(ctx, t)
		if err != nil {
			return nil, err
		}
		lessons := c.SortedLessons()
		if len(lessons) == 0 {
			rows = append(rows, types.NewRow(
				types.MRP("title", c.Title),
				types.MRP("instructor", c.Instructor),
				types.MRP("course_link", c.Link),
			))
			continue
		}
		for _, l := range lessons {
			rows = append(rows, types.NewRow(
				types.MRP("title", c.Title),
				types.MRP("instructor", c.Instructor),
				types.MRP("course_link", c.Link),
				types.MRP("lesson_number", l.Number),
				types.MRP("lesson_title", l.Title),
				types.MRP("lesson_link", l.Link),
			))
		}
	}
	return rows, nil
}
