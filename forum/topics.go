package forum

import (
	"context"

	"github.com/samber/lo"
)

func findTopic(topics []Topic, id string) *Topic {
	for i := range topics {
		if topics[i].ID == id {
			return &topics[i]
		}
	}
	return nil
}

// CreateTopic appends a new visible topic and returns its id. It always
// succeeds; the caller is responsible for validating the title.
func (s *Service) CreateTopic(ctx context.Context, title, creator, description string) (string, error) {
	id, err := s.createTopic(ctx, title, creator, description)
	return delayed(ctx, s, id, err)
}

func (s *Service) createTopic(ctx context.Context, title, creator, description string) (string, error) {
	topics, err := loadList[Topic](ctx, s, keyTopics)
	if err != nil {
		return "", err
	}
	id := s.ids.NewID()
	topics = append(topics, Topic{
		ID:          id,
		Title:       title,
		Creator:     creator,
		Description: description,
	})
	if err := saveList(ctx, s, keyTopics, topics); err != nil {
		return "", err
	}
	s.logAction(ctx, creator, ActionCreateTopic, map[string]any{
		"title":       title,
		"description": description,
	})
	return id, nil
}

// Topics returns all non-hidden topics in insertion order.
func (s *Service) Topics(ctx context.Context) ([]Topic, error) {
	topics, err := s.visibleTopics(ctx)
	return delayed(ctx, s, topics, err)
}

// RandomTopics returns a random sample of non-hidden topics. A count of zero
// or less samples three.
func (s *Service) RandomTopics(ctx context.Context, count int) ([]Topic, error) {
	topics, err := s.randomTopics(ctx, count)
	return delayed(ctx, s, topics, err)
}

func (s *Service) randomTopics(ctx context.Context, count int) ([]Topic, error) {
	if count <= 0 {
		count = 3
	}
	topics, err := s.visibleTopics(ctx)
	if err != nil {
		return nil, err
	}
	topics = lo.Shuffle(topics)
	if len(topics) > count {
		topics = topics[:count]
	}
	return topics, nil
}

func (s *Service) visibleTopics(ctx context.Context) ([]Topic, error) {
	topics, err := loadList[Topic](ctx, s, keyTopics)
	if err != nil {
		return nil, err
	}
	return lo.Filter(topics, func(t Topic, _ int) bool { return !t.Hidden }), nil
}

// HideTopic soft-deletes a topic: it stays in storage but drops out of
// non-admin reads. Distinct from DeleteTopic, which removes it for good.
func (s *Service) HideTopic(ctx context.Context, id string) error {
	return delayedErr(ctx, s, s.hideTopic(ctx, id))
}

func (s *Service) hideTopic(ctx context.Context, id string) error {
	topics, err := loadList[Topic](ctx, s, keyTopics)
	if err != nil {
		return err
	}
	topic := findTopic(topics, id)
	if topic == nil {
		return ErrTopicNotFound
	}
	topic.Hidden = true
	return saveList(ctx, s, keyTopics, topics)
}

// DeleteTopic removes the topic and every message that references it. This
// cascade is the only cross-collection consistency rule.
func (s *Service) DeleteTopic(ctx context.Context, id string) error {
	return delayedErr(ctx, s, s.deleteTopic(ctx, id))
}

func (s *Service) deleteTopic(ctx context.Context, id string) error {
	topics, err := loadList[Topic](ctx, s, keyTopics)
	if err != nil {
		return err
	}
	if findTopic(topics, id) == nil {
		return ErrTopicNotFound
	}
	topics = lo.Filter(topics, func(t Topic, _ int) bool { return t.ID != id })
	if err := saveList(ctx, s, keyTopics, topics); err != nil {
		return err
	}

	messages, err := loadList[Message](ctx, s, keyMessages)
	if err != nil {
		return err
	}
	messages = lo.Filter(messages, func(m Message, _ int) bool { return m.TopicID != id })
	return saveList(ctx, s, keyMessages, messages)
}
