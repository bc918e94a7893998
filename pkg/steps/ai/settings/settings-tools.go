package settings

import (
	"time"

	"github.com/huandu/go-clone"
)

type ToolSettings struct {
	MaxParallel int           `yaml:"max_parallel,omitempty" mapstructure:"max-parallel"`
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	// ValidateArguments checks tool arguments against the tool's schema
	// before running it.
	ValidateArguments bool `yaml:"validate_arguments" mapstructure:"validate-arguments"`
}

func NewToolSettings() *ToolSettings {
	return &ToolSettings{
		MaxParallel: 3,
		Timeout:     30 * time.Second,

		ValidateArguments: true,
	}
}

func (s *ToolSettings) Clone() *ToolSettings {
	return clone.Clone(s).(*ToolSettings)
}
