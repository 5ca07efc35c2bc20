package config

import (
	"github.com/caarlos0/env/v11"
)

// TrainerConfig holds configuration for the trainer binary.
type TrainerConfig struct {
	VocabDir string `envDefault:"./words"    env:"VOCAB_DIR"`
	Category string `envDefault:""           env:"CATEGORY"`

	TTSBackend  string  `envDefault:"espeak"    env:"TTS_BACKEND"`
	TTSBinary   string  `envDefault:"espeak-ng" env:"TTS_BINARY"`
	TTSLanguage string  `envDefault:"en"        env:"TTS_LANGUAGE"`
	STTBackend  string  `envDefault:""          env:"STT_BACKEND"`
	STTBinary   string  `envDefault:""          env:"STT_BINARY"`
	STTModel    string  `envDefault:""          env:"STT_MODEL"`
	VoiceGender string  `envDefault:"female"    env:"VOICE_GENDER"`
	VoiceURI    string  `envDefault:""          env:"VOICE_URI"`
	SpeechRate  float64 `envDefault:"1.0"       env:"SPEECH_RATE"`

	PromptDelayMs      int `envDefault:"600"  env:"PROMPT_DELAY_MS"`
	FeedbackDwellMs    int `envDefault:"1500" env:"FEEDBACK_DWELL_MS"`
	VoiceCatalogWaitMs int `envDefault:"3000" env:"VOICE_CATALOG_WAIT_MS"`

	SoundCommand string `envDefault:""         env:"SOUND_COMMAND"`
	SoundDir     string `envDefault:"./sounds" env:"SOUND_DIR"`
}

// Load parses the trainer configuration from the environment.
func Load() (TrainerConfig, error) {
	var cfg TrainerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
