package cmds

import (
	"context"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

type catalogStats struct {
	Courses int
	Lessons int
	Chunks  int
	Tokens  int
}

func (st catalogStats) Row() types.Row {
	return types.NewRow(
		types.MRP("courses", st.Courses),
		types.MRP("lessons", st.Lessons),
		types.MRP("chunks", st.Chunks),
		types.MRP("tokens", st.Tokens),
	)
}

// computeStats counts what a catalog would add to the index. Tokens are
// counted with cl100k_base, which is close enough for both providers.
func computeStats(courses []coursestore.Course) (catalogStats, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return catalogStats{}, errors.Wrap(err, "could not load tokenizer")
	}
	var st catalogStats
	for _, c := range courses {
		st.Courses++
		st.Lessons += len(c.Lessons)
		for _, chunk := range c.ContentChunks() {
			st.Chunks++
			ids, _, err := codec.Encode(chunk.Content)
			if err != nil {
				return catalogStats{}, errors.Wrapf(err, "could not encode chunk of %q", c.Title)
			}
			st.Tokens += len(ids)
		}
	}
	return st, nil
}

// indexRow summarizes what is already indexed.
func indexRow(ctx context.Context, store coursestore.CatalogReader) (types.Row, error) {
	n, err := store.CourseCount(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := store.CourseTitles(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewRow(
		types.MRP("total_courses", n),
		types.MRP("titles", strings.Join(titles, ", ")),
	), nil
}

type StatsSettings struct {
	Catalogs []string `glazed.parameter:"catalogs"`
}

type StatsCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*StatsCommand)(nil)

func NewStatsCommand() (*StatsCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create Glazed parameter layer")
	}

	return &StatsCommand{
		CommandDescription: cmds.NewCommandDescription(
			"stats",
			cmds.WithShort("Show index statistics, or token counts of catalog files"),
			cmds.WithLong("Without arguments, summarize the index. Given catalog files, count the courses, lessons, chunks and tokens they would add."),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"catalogs",
					parameters.ParameterTypeStringList,
					parameters.WithHelp("Catalog files (YAML or markdown) to measure"),
					parameters.WithDefault([]string{}),
				),
			),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *StatsCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *layers.ParsedLayers, gp middlewares.Processor) error {
	s := &StatsSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return errors.Wrap(err, "error initializing settings")
	}

	if len(s.Catalogs) > 0 {
		var courses []coursestore.Course
		for _, path := range s.Catalogs {
			cs, err := loadCourses(path, coursestore.DefaultChunkSize)
			if err != nil {
				return err
			}
			courses = append(courses, cs...)
		}
		st, err := computeStats(courses)
		if err != nil {
			return err
		}
		return gp.AddRow(ctx, st.Row())
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	row, err := indexRow(ctx, a.Store)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, row)
}
