package forum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/store"
)

// ForumTestSuite exercises the data-access layer against a fresh in-memory
// store per test.
type ForumTestSuite struct {
	suite.Suite
	ctx context.Context
	svc *Service
}

func (s *ForumTestSuite) SetupTest() {
	s.ctx = context.Background()
	cfg := &config.Config{
		LatencyMS: 0,
		SeedUsers: []config.SeedUser{
			{Username: "admin", Password: "admin", IsAdmin: true},
		},
	}
	s.svc = New(store.NewMemoryStore(), cfg)
	s.Require().NoError(s.svc.Initialize(s.ctx))
}

func (s *ForumTestSuite) TestInitializeIsIdempotent() {
	s.Require().NoError(s.svc.Initialize(s.ctx))

	users, err := s.svc.AllUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
	s.Equal("admin", users[0].Username)
	s.Equal("admin", users[0].Password) // passwords are stored verbatim
	s.True(users[0].IsAdmin)
}

func (s *ForumTestSuite) TestRegisterDuplicateUsername() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "pw1", false))
	err := s.svc.Register(s.ctx, "alice", "pw2", false)
	s.ErrorIs(err, ErrUserExists)

	users, err := s.svc.AllUsers(s.ctx)
	s.Require().NoError(err)

	var count int
	for _, u := range users {
		if u.Username == "alice" {
			count++
			s.Equal("pw1", u.Password)
		}
	}
	s.Equal(1, count)
}

func (s *ForumTestSuite) TestLoginRejectsBadCredentials() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "secret", false))

	_, err := s.svc.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.svc.Login(s.ctx, "nobody", "secret")
	s.ErrorIs(err, ErrInvalidCredentials)

	user, err := s.svc.SessionUser(s.ctx)
	s.Require().NoError(err)
	s.Nil(user)
}

func (s *ForumTestSuite) TestSessionLifecycle() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "secret", false))

	logged, err := s.svc.Login(s.ctx, "alice", "secret")
	s.Require().NoError(err)
	s.Equal("alice", logged.Username)

	user, err := s.svc.SessionUser(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal("alice", user.Username)

	s.Require().NoError(s.svc.Logout(s.ctx))

	user, err = s.svc.SessionUser(s.ctx)
	s.Require().NoError(err)
	s.Nil(user)

	// logout with no session is still fine
	s.Require().NoError(s.svc.Logout(s.ctx))
}

func (s *ForumTestSuite) TestChangeCredentials() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "secret", false))

	err := s.svc.ChangeCredentials(s.ctx, "nobody", "x", "y")
	s.ErrorIs(err, ErrUserNotFound)

	// renaming onto a taken username is rejected
	err = s.svc.ChangeCredentials(s.ctx, "alice", "admin", "")
	s.ErrorIs(err, ErrUserExists)

	// empty new values keep the existing ones
	s.Require().NoError(s.svc.ChangeCredentials(s.ctx, "alice", "", "newpw"))
	_, err = s.svc.Login(s.ctx, "alice", "newpw")
	s.Require().NoError(err)

	// renaming a logged-in user refreshes the session
	s.Require().NoError(s.svc.ChangeCredentials(s.ctx, "alice", "alicia", ""))
	user, err := s.svc.SessionUser(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal("alicia", user.Username)

	// the log entry is keyed to the old username
	logs, err := s.svc.Logs(s.ctx, "alice")
	s.Require().NoError(err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	s.Contains(actions, ActionChangeCredentials)
}

func (s *ForumTestSuite) TestCreateTopicAndList() {
	id, err := s.svc.CreateTopic(s.ctx, "Birds", "admin", "all about birds")
	s.Require().NoError(err)
	s.NotEmpty(id)

	topics, err := s.svc.Topics(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(topics, 1)
	s.Equal(id, topics[0].ID)
	s.Equal("Birds", topics[0].Title)
	s.Equal("all about birds", topics[0].Description)
	s.False(topics[0].Hidden)
}

func (s *ForumTestSuite) TestTopicIDsAreDistinct() {
	id1, err := s.svc.CreateTopic(s.ctx, "a", "admin", "")
	s.Require().NoError(err)
	id2, err := s.svc.CreateTopic(s.ctx, "b", "admin", "")
	s.Require().NoError(err)
	s.NotEqual(id1, id2)
}

func (s *ForumTestSuite) TestHideTopic() {
	id, err := s.svc.CreateTopic(s.ctx, "Birds", "admin", "")
	s.Require().NoError(err)

	s.ErrorIs(s.svc.HideTopic(s.ctx, "missing"), ErrTopicNotFound)
	s.Require().NoError(s.svc.HideTopic(s.ctx, id))

	topics, err := s.svc.Topics(s.ctx)
	s.Require().NoError(err)
	s.Empty(topics)
}

func (s *ForumTestSuite) TestRandomTopics() {
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		_, err := s.svc.CreateTopic(s.ctx, title, "admin", "")
		s.Require().NoError(err)
	}

	topics, err := s.svc.RandomTopics(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(topics, 2)

	// zero falls back to the default sample size
	topics, err = s.svc.RandomTopics(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(topics, 3)

	// asking for more than exist returns everything
	topics, err = s.svc.RandomTopics(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(topics, 5)
}

func (s *ForumTestSuite) TestDeleteTopicCascades() {
	keep, err := s.svc.CreateTopic(s.ctx, "keep", "admin", "")
	s.Require().NoError(err)
	doomed, err := s.svc.CreateTopic(s.ctx, "doomed", "admin", "")
	s.Require().NoError(err)

	_, err = s.svc.AddMessage(s.ctx, keep, "admin", "stays")
	s.Require().NoError(err)
	_, err = s.svc.AddMessage(s.ctx, doomed, "admin", "goes")
	s.Require().NoError(err)

	s.ErrorIs(s.svc.DeleteTopic(s.ctx, "missing"), ErrTopicNotFound)
	s.Require().NoError(s.svc.DeleteTopic(s.ctx, doomed))

	topics, err := s.svc.Topics(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(topics, 1)
	s.Equal(keep, topics[0].ID)

	msgs, err := s.svc.Messages(s.ctx, doomed, "", nil)
	s.Require().NoError(err)
	s.Empty(msgs)

	msgs, err = s.svc.Messages(s.ctx, keep, "", nil)
	s.Require().NoError(err)
	s.Len(msgs, 1)
}

func (s *ForumTestSuite) TestHiddenMessagesVisibility() {
	topic, err := s.svc.CreateTopic(s.ctx, "t", "admin", "")
	s.Require().NoError(err)

	id, err := s.svc.AddMessage(s.ctx, topic, "alice", "hello")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.HideMessage(s.ctx, id))

	msgs, err := s.svc.Messages(s.ctx, topic, "", nil)
	s.Require().NoError(err)
	s.Empty(msgs)

	msgs, err = s.svc.Messages(s.ctx, topic, "", &User{Username: "bob"})
	s.Require().NoError(err)
	s.Empty(msgs)

	msgs, err = s.svc.Messages(s.ctx, topic, "", &User{Username: "admin", IsAdmin: true})
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.True(msgs[0].Hidden)

	s.Require().NoError(s.svc.ShowMessage(s.ctx, id))
	msgs, err = s.svc.Messages(s.ctx, topic, "", nil)
	s.Require().NoError(err)
	s.Len(msgs, 1)
}

func (s *ForumTestSuite) TestMessageFilterIsCaseSensitiveSubstring() {
	topic, err := s.svc.CreateTopic(s.ctx, "t", "admin", "")
	s.Require().NoError(err)

	for _, text := range []string{"abcdef", "xxabcxx", "ABC", "ab c"} {
		_, err := s.svc.AddMessage(s.ctx, topic, "alice", text)
		s.Require().NoError(err)
	}

	msgs, err := s.svc.Messages(s.ctx, topic, "abc", nil)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("abcdef", msgs[0].Text)
	s.Equal("xxabcxx", msgs[1].Text)
}

func (s *ForumTestSuite) TestEditMessage() {
	topic, err := s.svc.CreateTopic(s.ctx, "t", "admin", "")
	s.Require().NoError(err)
	id, err := s.svc.AddMessage(s.ctx, topic, "alice", "before")
	s.Require().NoError(err)

	s.ErrorIs(s.svc.EditMessage(s.ctx, "missing", "x"), ErrMessageNotFound)
	s.Require().NoError(s.svc.EditMessage(s.ctx, id, "after"))

	msgs, err := s.svc.Messages(s.ctx, topic, "", nil)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("after", msgs[0].Text)
}

func (s *ForumTestSuite) TestActionsAreLogged() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "pw", false))
	_, err := s.svc.Login(s.ctx, "alice", "pw")
	s.Require().NoError(err)
	topic, err := s.svc.CreateTopic(s.ctx, "t", "alice", "d")
	s.Require().NoError(err)
	_, err = s.svc.AddMessage(s.ctx, topic, "alice", "hi")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Logout(s.ctx))

	logs, err := s.svc.Logs(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(logs, 5)
	s.Equal(ActionRegister, logs[0].Action)
	s.Equal(ActionLogin, logs[1].Action)
	s.Equal(ActionCreateTopic, logs[2].Action)
	s.Equal("t", logs[2].Details["title"])
	s.Equal(ActionSendMessage, logs[3].Action)
	s.Equal(topic, logs[3].Details["topicId"])
	s.Equal(ActionLogout, logs[4].Action)

	// filtered by username
	logs, err = s.svc.Logs(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(logs)
}

func (s *ForumTestSuite) TestMessageTimestampFormat() {
	fixed := time.Date(2024, 1, 1, 12, 30, 45, 123_000_000, time.UTC)
	svc := New(store.NewMemoryStore(), &config.Config{}, WithClock(func() time.Time { return fixed }))

	topic, err := svc.CreateTopic(s.ctx, "t", "alice", "")
	s.Require().NoError(err)
	_, err = svc.AddMessage(s.ctx, topic, "alice", "hi")
	s.Require().NoError(err)

	msgs, err := svc.Messages(s.ctx, topic, "", nil)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("2024-01-01T12:30:45.123Z", msgs[0].Time)
}

func (s *ForumTestSuite) TestSimulatedLatencyHonorsCancellation() {
	cfg := &config.Config{LatencyMS: 5000}
	svc := New(store.NewMemoryStore(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Register(ctx, "alice", "pw", false)
	s.ErrorIs(err, context.Canceled)
}

func (s *ForumTestSuite) TestReset() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "pw", false))
	_, err := s.svc.CreateTopic(s.ctx, "t", "alice", "")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Reset(s.ctx))

	users, err := s.svc.AllUsers(s.ctx)
	s.Require().NoError(err)
	s.Empty(users)
	topics, err := s.svc.Topics(s.ctx)
	s.Require().NoError(err)
	s.Empty(topics)
}

func (s *ForumTestSuite) TestCollectStats() {
	s.Require().NoError(s.svc.Register(s.ctx, "alice", "pw", false))
	topic, err := s.svc.CreateTopic(s.ctx, "t", "alice", "")
	s.Require().NoError(err)
	_, err = s.svc.AddMessage(s.ctx, topic, "alice", "hi")
	s.Require().NoError(err)

	stats, err := s.svc.CollectStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.Users) // admin seed + alice
	s.Equal(1, stats.Topics)
	s.Equal(1, stats.Messages)
	s.Equal(3, stats.Logs)
	s.NotEmpty(stats.LastActivity)
}

// interleavingStore wraps a Store and fires a hook after the first read of
// one key, so a test can slip a competing writer between a read-modify-write
// pair.
type interleavingStore struct {
	store.Store
	key      string
	afterGet func()
}

func (p *interleavingStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := p.Store.Get(ctx, key)
	if key == p.key && p.afterGet != nil {
		hook := p.afterGet
		p.afterGet = nil
		hook()
	}
	return b, err
}

func (s *ForumTestSuite) TestOverlappingTopicCreatesLastWriterWins() {
	inner := store.NewMemoryStore()
	wrapped := &interleavingStore{Store: inner, key: keyTopics}
	cfg := &config.Config{LatencyMS: 0}
	svc := New(wrapped, cfg)

	// A second writer completes a whole create while the first call sits
	// between its read and its write of the topics list.
	var interleavedID string
	wrapped.afterGet = func() {
		id, err := New(inner, cfg).CreateTopic(s.ctx, "second", "bob", "")
		s.Require().NoError(err)
		interleavedID = id
	}

	lastID, err := svc.CreateTopic(s.ctx, "first", "alice", "")
	s.Require().NoError(err)
	s.NotEmpty(interleavedID)
	s.NotEqual(lastID, interleavedID)

	// Both calls succeeded with distinct ids, but the last write carried a
	// list that never saw the interleaved topic, so that topic is lost.
	topics, err := svc.Topics(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(topics, 1)
	s.Equal(lastID, topics[0].ID)
	s.Equal("first", topics[0].Title)
}

func TestForumTestSuite(t *testing.T) {
	suite.Run(t, new(ForumTestSuite))
}

func TestIsAdmin(t *testing.T) {
	if IsAdmin(nil) {
		t.Fatal("nil user must not be admin")
	}
	if IsAdmin(&User{Username: "alice"}) {
		t.Fatal("regular user must not be admin")
	}
	if !IsAdmin(&User{Username: "root", IsAdmin: true}) {
		t.Fatal("admin flag must be honored")
	}
}
