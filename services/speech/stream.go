package speech

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownStream is returned for a session with no open stream.
	ErrUnknownStream = errors.New("no audio stream for session")
)

type streamState struct {
	mimeType string
	chunks   []string
}

// StreamBuffer accumulates base64 audio chunks per session until the
// client finalizes the stream. Finalize consumes the stream atomically,
// so a concurrent duplicate finalize gets ErrUnknownStream instead of
// the audio.
type StreamBuffer struct {
	mu      sync.Mutex
	streams map[string]*streamState
}

func NewStreamBuffer() *StreamBuffer {
	return &StreamBuffer{streams: make(map[string]*streamState)}
}

// Start opens (or restarts) a stream for the session. The mime type is
// validated up front so a client learns about an unsupported format
// before uploading anything.
func (b *StreamBuffer) Start(sessionID, mimeType string) error {
	if !SupportedMime(mimeType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[sessionID] = &streamState{mimeType: mimeType}
	return nil
}

// Append adds a base64 chunk and returns the chunk count so far.
func (b *StreamBuffer) Append(sessionID, chunk string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.streams[sessionID]
	if !ok {
		return 0, ErrUnknownStream
	}
	st.chunks = append(st.chunks, chunk)
	return len(st.chunks), nil
}

// Finalize removes the stream and decodes the joined chunks. The removal
// happens before decoding, so the stream is consumed exactly once even
// if decoding fails.
func (b *StreamBuffer) Finalize(sessionID string) ([]byte, string, error) {
	b.mu.Lock()
	st, ok := b.streams[sessionID]
	if ok {
		delete(b.streams, sessionID)
	}
	b.mu.Unlock()
	if !ok {
		return nil, "", ErrUnknownStream
	}
	if len(st.chunks) == 0 {
		return nil, "", errors.New("empty audio stream")
	}
	audio, err := base64.StdEncoding.DecodeString(strings.Join(st.chunks, ""))
	if err != nil {
		return nil, "", fmt.Errorf("decode audio: %w", err)
	}
	return audio, st.mimeType, nil
}
