package config

const (
	defaultOutputRoot     = ""
	defaultLogDir         = "~/.local/share/slidemovie/logs"
	defaultTTSBinary      = "multiai-tts"
	defaultTTSProvider    = "google"
	defaultTTSModel       = "gemini-2.5-flash-preview-tts"
	defaultTTSVoice       = "sadaltager"
	defaultTTSPrompt      = "Please speak the following."
	defaultTTSWorkers     = 2
	defaultScreenWidth    = 1280
	defaultScreenHeight   = 720
	defaultVideoFPS       = 30
	defaultVideoTimescale = 90000
	defaultVideoPixFmt    = "yuv420p"
	defaultVideoCodec     = "libx264"
	defaultAudioCodec     = "aac"
	defaultSampleRate     = 44100
	defaultAudioBitrate   = "192k"
	defaultAudioChannels  = 2
	defaultSilenceSec     = 2.5
	defaultMaxRetry       = 2
	defaultFFmpegLogLevel = "error"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputRoot: defaultOutputRoot,
			LogDir:     defaultLogDir,
		},
		TTS: TTS{
			Binary:    defaultTTSBinary,
			Provider:  defaultTTSProvider,
			Model:     defaultTTSModel,
			Voice:     defaultTTSVoice,
			UsePrompt: true,
			Prompt:    defaultTTSPrompt,
			Workers:   defaultTTSWorkers,
		},
		Video: Video{
			ScreenWidth:  defaultScreenWidth,
			ScreenHeight: defaultScreenHeight,
			FPS:          defaultVideoFPS,
			Timescale:    defaultVideoTimescale,
			PixFmt:       defaultVideoPixFmt,
			Codec:        defaultVideoCodec,
		},
		Audio: Audio{
			Codec:      defaultAudioCodec,
			SampleRate: defaultSampleRate,
			Bitrate:    defaultAudioBitrate,
			Channels:   defaultAudioChannels,
			SilenceSec: defaultSilenceSec,
		},
		Build: Build{
			MaxRetry:       defaultMaxRetry,
			FFmpegLogLevel: defaultFFmpegLogLevel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
