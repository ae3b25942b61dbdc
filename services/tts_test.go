package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextToChunksByByte(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"hello."}, splitTextToChunksByByte("hello.", 100))
	})

	t.Run("prefers sentence boundary", func(t *testing.T) {
		chunks := splitTextToChunksByByte("One two. Three four five.", 12)
		assert.Equal(t, "One two.", chunks[0])
		assert.Equal(t, "One two. Three four five.", strings.Join(chunks, ""))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		text := strings.Repeat("xin chào thế giới ", 50)
		chunks := splitTextToChunksByByte(text, 37)
		for _, c := range chunks {
			assert.True(t, utf8.ValidString(c), c)
			assert.LessOrEqual(t, len(c), 37)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})
}

func TestVoices(t *testing.T) {
	voices := mergeVoices(map[string]string{"nova": "en-AU-Neural2-C"})
	assert.Equal(t, "en-AU-Neural2-C", voices["nova"])
	assert.Equal(t, DefaultVoiceMap["onyx"], voices["onyx"])
	assert.Equal(t, "en-US-Neural2-F", DefaultVoiceMap["nova"])

	assert.Equal(t, "en-GB", languageCode("en-GB-Neural2-B"))
	assert.Equal(t, "en-US", languageCode("weird"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("abc"))
	assert.Equal(t, `%a\%b\_c\\%`, likePattern(`a%b_c\`))
}

func TestSuggestionPrompt(t *testing.T) {
	p, err := suggestionPrompt(PromptVoice, "Title", "About things")
	assert.NoError(t, err)
	assert.Contains(t, p, "Title")
	assert.Contains(t, p, "About things")

	_, err = suggestionPrompt("poem", "Title", "")
	assert.Error(t, err)
}
