// Package speech handles audio input: transcription through Google
// Cloud Speech-to-Text and the chunked-upload buffer used by the
// streaming endpoints.
package speech

import (
	"context"
	"errors"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"movebot/utils"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat rejects audio types outside the allowlist.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// supportedMimeTypes is the accepted upload allowlist.
var supportedMimeTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/webm":  true,
	"audio/ogg":   true,
	"audio/x-m4a": true,
	"audio/mp4":   true,
}

// SupportedMime reports whether mimeType is accepted for transcription.
func SupportedMime(mimeType string) bool {
	return supportedMimeTypes[mimeType]
}

// Transcriber converts an audio payload into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// GoogleTranscriber uses the Cloud Speech-to-Text recognize API.
type GoogleTranscriber struct {
	client *speech.Client
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleTranscriber{client: c}, nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}

// recognitionConfig maps a mime type to the recognizer settings.
// Containers that carry their own headers (WAV, MP3, MP4/M4A) leave the
// encoding unspecified and let the API read it from the payload; the v1
// API has no dedicated MP3 encoding.
func recognitionConfig(mimeType string) (*speechpb.RecognitionConfig, error) {
	cfg := &speechpb.RecognitionConfig{
		LanguageCode:               "en-US",
		EnableAutomaticPunctuation: true,
	}
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/mpeg", "audio/mp4", "audio/x-m4a":
		cfg.Encoding = speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	case "audio/webm":
		cfg.Encoding = speechpb.RecognitionConfig_WEBM_OPUS
		cfg.SampleRateHertz = 48000
	case "audio/ogg":
		cfg.Encoding = speechpb.RecognitionConfig_OGG_OPUS
		cfg.SampleRateHertz = 48000
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	return cfg, nil
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if !SupportedMime(mimeType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	cfg, err := recognitionConfig(mimeType)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	})
	if err != nil {
		utils.GetLogger().Error("speech recognition failed",
			zap.String("mime", mimeType), zap.Int("bytes", len(audio)), zap.Error(err))
		return "", err
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript + " "
		}
	}
	if transcript == "" {
		return "", errors.New("no speech recognized")
	}
	return transcript[:len(transcript)-1], nil
}
