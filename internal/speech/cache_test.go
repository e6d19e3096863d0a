package speech

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingocards/lingocards/internal/settings"
)

func TestKey(t *testing.T) {
	tts := settings.TTSSettings{
		Model: "tts-1", Voice: "alloy", Speed: 1.0,
		ResponseFormat: "mp3", VoiceStyle: "neutral",
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Key("Valley", tts), Key("Valley", tts))
	})

	t.Run("case and surrounding whitespace do not matter", func(t *testing.T) {
		assert.Equal(t, Key("Valley", tts), Key("  valley  ", tts))
	})

	t.Run("different text differs", func(t *testing.T) {
		assert.NotEqual(t, Key("valley", tts), Key("river", tts))
	})

	t.Run("every voice-affecting setting participates", func(t *testing.T) {
		base := Key("valley", tts)

		changed := tts
		changed.Voice = "nova"
		assert.NotEqual(t, base, Key("valley", changed))

		changed = tts
		changed.Speed = 1.5
		assert.NotEqual(t, base, Key("valley", changed))

		changed = tts
		changed.VoiceStyle = "dramatic"
		assert.NotEqual(t, base, Key("valley", changed))

		changed = tts
		changed.CustomInstructions = "whisper"
		assert.NotEqual(t, base, Key("valley", changed))
	})

	t.Run("response format does not affect the key", func(t *testing.T) {
		changed := tts
		changed.ResponseFormat = "flac"
		assert.Equal(t, Key("valley", tts), Key("valley", changed))
	})
}

func TestCache_SetRefusedAtCapacity(t *testing.T) {
	cache := NewCache(3)
	for i := 0; i < 3; i++ {
		require.True(t, cache.Set(fmt.Sprintf("key-%d", i), []byte("audio")))
	}
	require.Equal(t, 3, cache.Size())

	assert.False(t, cache.Set("key-overflow", []byte("audio")))
	assert.Equal(t, 3, cache.Size())
	_, ok := cache.Get("key-overflow")
	assert.False(t, ok)

	// overwriting an existing key is still allowed at capacity
	assert.True(t, cache.Set("key-0", []byte("new audio")))
	audio, ok := cache.Get("key-0")
	require.True(t, ok)
	assert.Equal(t, []byte("new audio"), audio)
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(10)
	cache.Set("a", []byte("1"))
	cache.Set("b", []byte("2"))

	assert.Equal(t, 2, cache.Clear())
	assert.Equal(t, 0, cache.Size())
	assert.Equal(t, 0, cache.Clear())

	// usable after a clear
	assert.True(t, cache.Set("c", []byte("3")))
	assert.Equal(t, 1, cache.Size())
}

func TestStyleInstructions(t *testing.T) {
	t.Run("known style", func(t *testing.T) {
		assert.Equal(t, "Speak naturally and clearly with neutral tone.", StyleInstructions("neutral", ""))
	})

	t.Run("unknown style falls back to neutral", func(t *testing.T) {
		assert.Equal(t, StyleInstructions("neutral", ""), StyleInstructions("robotic", ""))
	})

	t.Run("custom instructions are appended", func(t *testing.T) {
		got := StyleInstructions("calm", "pause between sentences")
		assert.Contains(t, got, "Calm, composed")
		assert.Contains(t, got, "\n\nAdditional instructions: pause between sentences")
	})
}
