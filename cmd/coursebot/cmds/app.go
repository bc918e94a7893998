package cmds

import (
	"context"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/coursebot/pkg/coursetools"
	"github.com/go-go-golems/coursebot/pkg/embeddings"
	"github.com/go-go-golems/coursebot/pkg/inference/engine/factory"
	"github.com/go-go-golems/coursebot/pkg/inference/middleware"
	"github.com/go-go-golems/coursebot/pkg/inference/toolloop"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/go-go-golems/coursebot/pkg/steps/ai/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app bundles what the commands share. Loop is nil unless the command
// needs a model.
type app struct {
	Settings *settings.StepSettings
	Store    coursestore.Store
	Loop     *toolloop.Loop
	Usage    *middleware.UsageTracker
}

func loadSettings() (*settings.StepSettings, error) {
	s, err := settings.NewStepSettingsFromViper(viper.GetViper())
	if err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	log.Debug().Fields(s.GetMetadata()).Msg("cmds: loaded settings")
	return s, nil
}

func openStore(ctx context.Context, s *settings.StepSettings) (coursestore.Store, error) {
	p, err := embeddings.NewSettingsFactoryFromStepSettings(s).NewProvider()
	if err != nil {
		return nil, errors.Wrap(err, "could not create embeddings provider")
	}
	return coursestore.NewStoreFromSettings(ctx, s.Store, embeddings.Func(p))
}

func newApp(ctx context.Context, withLoop bool) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, s)
	if err != nil {
		return nil, err
	}
	a := &app{Settings: s, Store: store}
	if !withLoop {
		return a, nil
	}

	reg := tools.NewRegistry()
	if err := coursetools.Register(reg, store); err != nil {
		_ = store.Close()
		return nil, err
	}
	eng, err := factory.NewEngineFromStepSettings(s)
	if err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, "could not create engine")
	}
	a.Usage = middleware.NewUsageTracker()
	eng = middleware.NewEngineWithMiddleware(eng,
		middleware.NewLoggingMiddleware(log.Logger),
		a.Usage.Middleware(),
	)
	a.Loop = toolloop.NewFromSettings(s, eng, reg)
	return a, nil
}

func (a *app) Close() {
	if err := a.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("cmds: failed to close store")
	}
}

// addLoopFlags exposes the most used chat settings as flags.
func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-rounds", settings.DefaultMaxRounds, "Maximum number of tool rounds per query")
	cmd.Flags().String("api-type", "", "Model provider (claude, openai)")
	cmd.Flags().String("engine", "", "Model name")
}

// bindLoopFlags binds the flags of the running command only, since several
// commands share the same settings keys.
func bindLoopFlags(cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"chat.max-rounds": "max-rounds",
		"chat.api-type":   "api-type",
		"chat.engine":     "engine",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
