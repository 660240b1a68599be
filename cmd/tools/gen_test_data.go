// Command gen_test_data seeds a local store with demo accounts, a group
// chat and a few messages so the server has something to show right away.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"chat-pulse/domain"
	"chat-pulse/repositories"
	"chat-pulse/search"
)

func main() {
	badgerPath := envOr("BADGER_FILEPATH", "./data/badger")
	blugePath := envOr("BLUGE_FILEPATH", "./data/bluge")
	mediaDir := envOr("MEDIA_DIR", "./media")

	log := logs.GetLoggerFromLevel(slog.LevelInfo)

	if err := seed(badgerPath, blugePath, mediaDir, log); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Demo data ready. Start the server and connect as user 1, 2 or 3 on chat 1.")
}

func seed(badgerPath, blugePath, mediaDir string, log *slog.Logger) error {
	db, err := badger.Open(badger.DefaultOptions(badgerPath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("badger: %w", err)
	}
	defer db.Close()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(blugePath))
	if err != nil {
		return fmt.Errorf("bluge: %w", err)
	}
	defer writer.Close()

	storage, err := repositories.NewBadgerStorage(db, log)
	if err != nil {
		return err
	}
	index := search.NewMessageIndex(writer, log)
	ctx := context.Background()

	// Accounts with generated avatars
	usernames := []string{"alice", "bob", "carol"}
	users := make([]domain.User, 0, len(usernames))
	for i, name := range usernames {
		avatar, err := genAvatar(mediaDir, name, uint8(60+i*70))
		if err != nil {
			return err
		}
		user, err := storage.CreateAccount(ctx, repositories.CreateUserInput{
			Username: name,
			Avatar:   avatar,
			Guest:    true,
		})
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	// One group chat with everyone in it
	chat, err := storage.CreateChat(ctx, repositories.CreateChatInput{
		Name:      "general",
		IsGroup:   true,
		CreatedBy: users[0].ID,
	})
	if err != nil {
		return err
	}
	for i, user := range users {
		if err := storage.AddChatMember(ctx, chat.ID, user.ID, i == 0); err != nil {
			return err
		}
	}

	// A short indexed conversation
	lines := []struct {
		user int
		text string
	}{
		{0, "welcome to the general chat"},
		{1, "hey, anyone up for lunch?"},
		{2, "deployment went fine this morning"},
	}
	for _, line := range lines {
		msg, err := storage.CreateMessage(ctx, repositories.CreateMessageInput{
			ChatID: chat.ID,
			UserID: users[line.user].ID,
			Text:   line.text,
			Lang:   "en",
		})
		if err != nil {
			return err
		}
		if err := index.Index(msg); err != nil {
			return err
		}
	}

	// One story that outlives the demo session
	_, err = storage.CreateStory(ctx, repositories.CreateStoryInput{
		UserID:    users[0].ID,
		MediaURL:  "/media/" + usernames[0] + ".png",
		MediaType: "image/png",
		Caption:   "first story",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	return err
}

// genAvatar writes a flat-color square into the media dir and returns the
// URL the API would serve it under.
func genAvatar(dir, name string, tone uint8) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: tone, G: 120, B: 255 - tone, A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	path := filepath.Join(dir, name+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", err
	}
	return "/media/" + name + ".png", nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
