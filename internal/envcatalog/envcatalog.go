package envcatalog

type VarInfo struct {
	Category    string
	Name        string
	Description string
	Dynamic     bool
	Internal    bool
}

func Catalog() []VarInfo {
	return []VarInfo{
		{
			Category:    "Config",
			Name:        "MLCTL_CONFIG",
			Description: "Path to the mlctl CLI config file (flag defaults).",
		},
		{
			Category:    "Config",
			Name:        "MLCTL_<FLAG>",
			Dynamic:     true,
			Description: "Set any mlctl CLI flag via environment (hyphens become underscores). Example: MLCTL_OUTPUT=json.",
		},
		{
			Category:    "Repository",
			Name:        "MLCTL_REPOSITORY_PATH",
			Description: "Absolute path of the repository root to use instead of searching upward from the working directory. Must contain a .mlctl directory.",
		},
		{
			Category:    "Repository",
			Name:        "MLCTL_GLOBAL_CONFIG_DIR",
			Description: "Directory holding the global settings file (default: $XDG_CONFIG_HOME/mlctl or ~/.config/mlctl).",
		},
		{
			Category:    "Output",
			Name:        "NO_COLOR",
			Description: "Disable ANSI color output (any non-empty value).",
		},
		{
			Category:    "Profiling",
			Name:        "MLCTL_PROFILE",
			Description: "Enable profiling modes for mlctl itself (e.g. startup writes CPU/heap profiles to the working directory).",
		},
		{
			Category:    "Features",
			Name:        "MLCTL_FEATURE_<FLAG>",
			Dynamic:     true,
			Description: "Enable an experimental feature flag (repeatable via env). Example: MLCTL_FEATURE_STATUS_LAYERS=1.",
		},
	}
}
