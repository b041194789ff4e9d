package configloader

import (
	"github.com/samber/lo"

	"github.com/yaklabco/mdsite/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Strings and ints: override overwrites base if override is non-zero
//   - Pointers: override overwrites base if non-nil
//   - Slices: override replaces base entirely if override is non-nil,
//     dropping duplicate entries
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.ContentDir != "" {
		result.ContentDir = override.ContentDir
	}
	if override.StaticDir != "" {
		result.StaticDir = override.StaticDir
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if override.Template != "" {
		result.Template = override.Template
	}
	if override.BasePath != "" {
		result.BasePath = override.BasePath
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.Clean != nil {
		result.Clean = config.Bool(*override.Clean)
	}

	if override.FollowSymlinks != nil {
		result.FollowSymlinks = config.Bool(*override.FollowSymlinks)
	}

	if override.Ignore != nil {
		result.Ignore = lo.Uniq(override.Ignore)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
