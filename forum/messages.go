package forum

import (
	"context"
	"strings"

	"github.com/samber/lo"
)

func findMessage(messages []Message, id string) *Message {
	for i := range messages {
		if messages[i].ID == id {
			return &messages[i]
		}
	}
	return nil
}

// AddMessage appends a message to a topic and returns its id. Neither the
// topic id nor the text is validated; the caller is responsible.
func (s *Service) AddMessage(ctx context.Context, topicID, author, text string) (string, error) {
	id, err := s.addMessage(ctx, topicID, author, text)
	return delayed(ctx, s, id, err)
}

func (s *Service) addMessage(ctx context.Context, topicID, author, text string) (string, error) {
	messages, err := loadList[Message](ctx, s, keyMessages)
	if err != nil {
		return "", err
	}
	id := s.ids.NewID()
	messages = append(messages, Message{
		ID:      id,
		TopicID: topicID,
		Author:  author,
		Text:    text,
		Time:    s.timestamp(),
	})
	if err := saveList(ctx, s, keyMessages, messages); err != nil {
		return "", err
	}
	s.logAction(ctx, author, ActionSendMessage, map[string]any{"topicId": topicID})
	return id, nil
}

// Messages returns the messages of a topic. Hidden messages are excluded
// unless user is an admin. A non-empty filter restricts the result to
// messages whose text contains it as a literal, case-sensitive substring.
func (s *Service) Messages(ctx context.Context, topicID, filter string, user *User) ([]Message, error) {
	msgs, err := s.messages(ctx, topicID, filter, user)
	return delayed(ctx, s, msgs, err)
}

func (s *Service) messages(ctx context.Context, topicID, filter string, user *User) ([]Message, error) {
	messages, err := loadList[Message](ctx, s, keyMessages)
	if err != nil {
		return nil, err
	}
	messages = lo.Filter(messages, func(m Message, _ int) bool { return m.TopicID == topicID })
	if !IsAdmin(user) {
		messages = lo.Filter(messages, func(m Message, _ int) bool { return !m.Hidden })
	}
	if filter != "" {
		messages = lo.Filter(messages, func(m Message, _ int) bool { return strings.Contains(m.Text, filter) })
	}
	return messages, nil
}

// EditMessage overwrites the message text in place. No history is kept.
func (s *Service) EditMessage(ctx context.Context, id, newText string) error {
	return delayedErr(ctx, s, s.setMessage(ctx, id, func(m *Message) { m.Text = newText }))
}

// HideMessage excludes the message from non-admin reads.
func (s *Service) HideMessage(ctx context.Context, id string) error {
	return delayedErr(ctx, s, s.setMessage(ctx, id, func(m *Message) { m.Hidden = true }))
}

// ShowMessage makes a hidden message visible again.
func (s *Service) ShowMessage(ctx context.Context, id string) error {
	return delayedErr(ctx, s, s.setMessage(ctx, id, func(m *Message) { m.Hidden = false }))
}

func (s *Service) setMessage(ctx context.Context, id string, mutate func(*Message)) error {
	messages, err := loadList[Message](ctx, s, keyMessages)
	if err != nil {
		return err
	}
	msg := findMessage(messages, id)
	if msg == nil {
		return ErrMessageNotFound
	}
	mutate(msg)
	return saveList(ctx, s, keyMessages, messages)
}
