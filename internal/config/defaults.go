package config

const (
	defaultWorkDir           = "~/.local/share/cadence/runs"
	defaultLogDir            = "~/.local/share/cadence/logs"
	defaultFFprobeBinary     = "ffprobe"
	defaultFFmpegBinary      = "ffmpeg"
	defaultAubioBinary       = "aubio"
	defaultSynthBinary       = "clipsynth"
	defaultMinSectionSeconds = 8.0
	defaultMaxEnergyPoints   = 192
	defaultStylePreset       = "cinematic"
	defaultPlanResolution    = "832x480"
	defaultPlanFPS           = 16
	defaultMinShotSeconds    = 2.0
	defaultMaxShotSeconds    = 4.0
	defaultTakesHero         = 3
	defaultTakesStandard     = 2
	defaultTakesFiller       = 1
	defaultSeed              = 42
	defaultQuality           = "balanced"
	defaultPreviewStills     = 3
	defaultFinalResolution   = "1280x720"
	defaultFinalFPS          = 24
	defaultCRF               = 18
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Analysis: Analysis{
			FFprobeBin:        defaultFFprobeBinary,
			AubioBin:          defaultAubioBinary,
			MinSectionSeconds: defaultMinSectionSeconds,
			MaxEnergyPoints:   defaultMaxEnergyPoints,
		},
		Planning: Planning{
			StylePreset:    defaultStylePreset,
			Resolution:     defaultPlanResolution,
			FPS:            defaultPlanFPS,
			MinShotSeconds: defaultMinShotSeconds,
			MaxShotSeconds: defaultMaxShotSeconds,
			TakesHero:      defaultTakesHero,
			TakesStandard:  defaultTakesStandard,
			TakesFiller:    defaultTakesFiller,
			Seed:           defaultSeed,
		},
		Generation: Generation{
			SynthBin:       defaultSynthBinary,
			QualityDefault: defaultQuality,
			PreviewStills:  defaultPreviewStills,
			Previews:       true,
		},
		Assembly: Assembly{
			FFmpegBin:  defaultFFmpegBinary,
			Resolution: defaultFinalResolution,
			FPS:        defaultFinalFPS,
			CRF:        defaultCRF,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
