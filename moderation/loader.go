package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"chat-pulse/errors"
)

//go:embed censored/*
var censoredFS embed.FS

// Dictionary carries the loaded word list including metadata for logging.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary parses the embedded per-language word files into a unique
// list. Filenames double as language tags (e.g. "fr.txt" -> "fr").
func LoadDictionary() (*Dictionary, error) {
	return loadDictionary(censoredFS, "censored")
}

func loadDictionary(fsys fs.FS, dir string) (*Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
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

		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return &Dictionary{Words: words, Languages: languages}, nil
}
