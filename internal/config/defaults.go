package config

const (
	defaultConfigPath       = "~/.config/musicmerge/config.toml"
	projectConfigName       = "musicmerge.toml"
	defaultGameName         = "Skyrim Special Edition"
	defaultOutputFileName   = "music_merge_patch.esp"
	defaultOutputAuthor     = "ESMusicMerger"
	defaultTextEncoding     = "utf-8"
	defaultHistoryPath      = "~/.local/share/musicmerge/history.db"
	defaultLogDir           = "~/.local/share/musicmerge/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	// DataDirEnv overrides the game data directory when game.data_dir is unset.
	DataDirEnv = "MUSICMERGE_DATA_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Game: Game{
			Name:            defaultGameName,
			IncludeImplicit: true,
		},
		Output: Output{
			FileName: defaultOutputFileName,
			Author:   defaultOutputAuthor,
		},
		Codec: Codec{
			TextEncoding: defaultTextEncoding,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
