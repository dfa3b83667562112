// Package respond turns a reply text into spoken audio: the text is split
// into bounded chunks, every chunk is synthesised concurrently, and the
// finished pieces are played back strictly in order.
package respond

import "strings"

// DefaultMaxWords is the chunk size limit. Synthesis latency grows with
// text length, so long replies are cut into windows of at most this many
// words before being sent to the TTS gateway.
const DefaultMaxWords = 60

// sentenceEnd reports whether the word closes a clause. Chunk boundaries
// prefer these so playback does not cut mid-sentence.
func sentenceEnd(word string) bool {
	switch word[len(word)-1] {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

// Chunk splits text into chunks of at most maxWords words. Within each
// window the cut is placed after the last clause-ending word; a window
// without any clause end is cut at the word limit. Asterisks are removed
// first since the LLMs use them for emphasis and the TTS would read them
// aloud.
func Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	text = strings.ReplaceAll(text, "*", "")
	words := strings.Fields(text)

	var chunks []string
	for len(words) > 0 {
		if len(words) <= maxWords {
			chunks = append(chunks, strings.Join(words, " "))
			break
		}

		cut := maxWords
		for i := maxWords - 1; i >= 0; i-- {
			if sentenceEnd(words[i]) {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, strings.Join(words[:cut], " "))
		words = words[cut:]
	}
	return chunks
}
