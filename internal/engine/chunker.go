package engine

import "strings"

// SplitChunks splits outbound text into chunks no longer than size runes,
// breaking at whitespace so no word is split across chunks. Words longer
// than size are the one exception and are hard-split. Joining the chunks
// back with single spaces reconstructs the whitespace-normalized text.
func SplitChunks(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
	}

	for _, word := range words {
		wordLen := len([]rune(word))

		if wordLen > size {
			flush()
			chunks = append(chunks, hardSplit(word, size)...)
			continue
		}

		if currentLen > 0 && currentLen+1+wordLen > size {
			flush()
		}
		if currentLen == 0 {
			currentLen = wordLen
		} else {
			currentLen += 1 + wordLen
		}
		current = append(current, word)
	}
	flush()

	return chunks
}

// hardSplit cuts an oversized word into size-rune pieces.
func hardSplit(word string, size int) []string {
	runes := []rune(word)
	var pieces []string
	for len(runes) > size {
		pieces = append(pieces, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
