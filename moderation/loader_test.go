package moderation

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"chat-pulse/errors"
)

func TestLoadDictionary(t *testing.T) {
	t.Run("merges languages and deduplicates", func(t *testing.T) {
		req := require.New(t)
		fsys := fstest.MapFS{
			"words/en.txt": {Data: []byte("idiot\nmoron\n\n")},
			"words/fr.txt": {Data: []byte("abruti\r\nidiot\r\n")},
		}

		dict, err := loadDictionary(fsys, "words")
		req.NoError(err)
		req.ElementsMatch([]string{"en", "fr"}, dict.Languages)
		req.ElementsMatch([]string{"idiot", "moron", "abruti"}, dict.Words)
	})

	t.Run("empty files are an error", func(t *testing.T) {
		req := require.New(t)
		fsys := fstest.MapFS{
			"words/en.txt": {Data: []byte("\n\n")},
		}

		_, err := loadDictionary(fsys, "words")
		req.ErrorIs(err, errors.ErrEmptyWords)
	})

	t.Run("embedded dictionaries are not empty", func(t *testing.T) {
		req := require.New(t)
		dict, err := LoadDictionary()
		req.NoError(err)
		req.NotEmpty(dict.Words)
		req.Contains(dict.Languages, "en")
	})
}
