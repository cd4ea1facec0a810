package status

import (
	"fmt"

	"slidemovie/internal/config"
)

// ArtifactStatus is the lifecycle of one generated asset.
type ArtifactStatus string

const (
	StatusMissing   ArtifactStatus = "missing"
	StatusGenerated ArtifactStatus = "generated"
	StatusStale     ArtifactStatus = "stale"
	StatusError     ArtifactStatus = "error"
)

func validStatus(s ArtifactStatus) bool {
	switch s {
	case StatusMissing, StatusGenerated, StatusStale, StatusError, "":
		return true
	}
	return false
}

// Kind identifies which of a slide's three artifacts a record describes.
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Kinds returns the artifact kinds in generation order.
func Kinds() []Kind {
	return []Kind{KindAudio, KindImage, KindVideo}
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindAudio, KindImage, KindVideo:
		return Kind(value), true
	}
	return "", false
}

// ArtifactRecord is the kind-independent view of one artifact's state
// used by the planner and executor. FilePath is set only for kinds
// that own a file (audio, video); image assets are addressed by slide
// id convention.
type ArtifactRecord struct {
	Status      ArtifactStatus
	Hash        string
	FilePath    string
	ErrorDetail string
}

// AudioRecord is the persisted narration artifact state.
// AdditionalPrompt is user-editable in the status file and feeds the
// audio fingerprint.
type AudioRecord struct {
	Status           ArtifactStatus `json:"status"`
	WavFile          string         `json:"wav_file,omitempty"`
	Hash             string         `json:"hash,omitempty"`
	AdditionalPrompt string         `json:"additional_prompt,omitempty"`
	DurationSec      float64        `json:"duration_sec,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// ImageRecord is the persisted rendered-slide artifact state.
type ImageRecord struct {
	Status ArtifactStatus `json:"status"`
	Hash   string         `json:"hash,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// VideoRecord is the persisted composed-clip artifact state.
type VideoRecord struct {
	Status      ArtifactStatus `json:"status"`
	MP4File     string         `json:"mp4_file,omitempty"`
	Hash        string         `json:"hash,omitempty"`
	DurationSec float64        `json:"duration_sec,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// SlideState groups the three artifact records for one slide id.
type SlideState struct {
	Title      string      `json:"title,omitempty"`
	SlideIndex int         `json:"slide_index"`
	Audio      AudioRecord `json:"audio"`
	Image      ImageRecord `json:"image"`
	Video      VideoRecord `json:"video"`
}

// BuildConfig is the format snapshot locked when a project generates
// its first artifact. Load-bearing fields cannot change for the life
// of the project; advisory fields are refreshed on every run.
type BuildConfig struct {
	ScreenSize    [2]int  `json:"screen_size"`
	VideoFPS      int     `json:"video_fps"`
	Timescale     int     `json:"video_timescale"`
	PixFmt        string  `json:"video_pix_fmt"`
	VideoCodec    string  `json:"video_codec"`
	AudioCodec    string  `json:"audio_codec"`
	SampleRate    int     `json:"sample_rate"`
	AudioBitrate  string  `json:"audio_bitrate"`
	AudioChannels int     `json:"audio_channels"`
	SilenceSec    float64 `json:"silence_sec"`
}

// SnapshotConfig derives the lockable format snapshot from the
// effective configuration.
func SnapshotConfig(cfg *config.Config) BuildConfig {
	return BuildConfig{
		ScreenSize:    [2]int{cfg.Video.ScreenWidth, cfg.Video.ScreenHeight},
		VideoFPS:      cfg.Video.FPS,
		Timescale:     cfg.Video.Timescale,
		PixFmt:        cfg.Video.PixFmt,
		VideoCodec:    cfg.Video.Codec,
		AudioCodec:    cfg.Audio.Codec,
		SampleRate:    cfg.Audio.SampleRate,
		AudioBitrate:  cfg.Audio.Bitrate,
		AudioChannels: cfg.Audio.Channels,
		SilenceSec:    cfg.Audio.SilenceSec,
	}
}

// IsZero reports whether the snapshot has never been locked.
func (b BuildConfig) IsZero() bool {
	return b == BuildConfig{}
}

// LoadBearingDiff compares the fields that would corrupt concatenation
// of clips generated under different settings. Codec and pixel format
// are advisory; geometry, frame timing, audio stream parameters, and
// the silence prefix (it shifts every clip's timing) are not. Returns
// a human-readable description per mismatch.
func (b BuildConfig) LoadBearingDiff(other BuildConfig) []string {
	var diffs []string
	if b.ScreenSize != other.ScreenSize {
		diffs = append(diffs, fmt.Sprintf("screen_size %dx%d -> %dx%d",
			b.ScreenSize[0], b.ScreenSize[1], other.ScreenSize[0], other.ScreenSize[1]))
	}
	if b.VideoFPS != other.VideoFPS {
		diffs = append(diffs, fmt.Sprintf("video_fps %d -> %d", b.VideoFPS, other.VideoFPS))
	}
	if b.Timescale != other.Timescale {
		diffs = append(diffs, fmt.Sprintf("video_timescale %d -> %d", b.Timescale, other.Timescale))
	}
	if b.SampleRate != other.SampleRate {
		diffs = append(diffs, fmt.Sprintf("sample_rate %d -> %d", b.SampleRate, other.SampleRate))
	}
	if b.AudioChannels != other.AudioChannels {
		diffs = append(diffs, fmt.Sprintf("audio_channels %d -> %d", b.AudioChannels, other.AudioChannels))
	}
	if b.SilenceSec != other.SilenceSec {
		diffs = append(diffs, fmt.Sprintf("silence_sec %g -> %g", b.SilenceSec, other.SilenceSec))
	}
	return diffs
}
