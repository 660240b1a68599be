package repositories

import (
	"context"
	"fmt"
	"time"

	"chat-pulse/domain"

	"github.com/dgraph-io/badger/v4"
)

func storyKey(userID domain.UserID, id domain.StoryID) string {
	return fmt.Sprintf("story:%09d:%09d", userID, id)
}

func (s *BadgerStorage) CreateStory(_ context.Context, input CreateStoryInput) (domain.Story, error) {
	id, err := s.nextID(s.storySeq)
	if err != nil {
		return domain.Story{}, err
	}

	story := domain.Story{
		ID:        domain.StoryID(id),
		UserID:    input.UserID,
		MediaURL:  input.MediaURL,
		MediaType: input.MediaType,
		Caption:   input.Caption,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: input.ExpiresAt,
	}
	if err := s.setJSON(storyKey(story.UserID, story.ID), story); err != nil {
		return domain.Story{}, err
	}
	return story, nil
}

func (s *BadgerStorage) ActiveStories(_ context.Context) ([]domain.Story, error) {
	return s.scanStories("story:")
}

func (s *BadgerStorage) StoriesForUser(_ context.Context, id domain.UserID) ([]domain.Story, error) {
	return s.scanStories(fmt.Sprintf("story:%09d:", id))
}

// PurgeExpiredStories deletes expired story rows. Reads already filter them,
// this only reclaims space.
func (s *BadgerStorage) PurgeExpiredStories(_ context.Context) (int, error) {
	now := time.Now().UTC()
	var keys []string
	err := scanJSON(s.db, "story:", func(story domain.Story) error {
		if story.Expired(now) {
			keys = append(keys, storyKey(story.UserID, story.ID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
		if err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

func (s *BadgerStorage) scanStories(prefix string) ([]domain.Story, error) {
	now := time.Now().UTC()
	var stories []domain.Story
	err := scanJSON(s.db, prefix, func(story domain.Story) error {
		if !story.Expired(now) {
			stories = append(stories, story)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stories, nil
}
