package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"
)

//go:embed wordlists/*.txt
var wordlistsFolder embed.FS

// CensoredData carries the result of the loading process including
// metadata for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadEmbedded parses the embedded wordlist files, one language per
// .txt file ("en.txt" -> "en"), into a unique list of words.
func LoadEmbedded() (*CensoredData, error) {
	entries, err := fs.ReadDir(wordlistsFolder, "wordlists")
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		content, err := wordlistsFolder.ReadFile("wordlists/" + entry.Name())
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(bytes.NewReader(content))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			uniqueWords[strings.ToLower(word)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	data := &CensoredData{Languages: languages}
	for word := range uniqueWords {
		data.Words = append(data.Words, word)
	}
	return data, nil
}
