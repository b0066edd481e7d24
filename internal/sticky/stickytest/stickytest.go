// Package stickytest provides in-memory doubles of the sticky message store
// and of the Discord session for tests.
package stickytest

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"anthraxutils/internal/database/types"

	"github.com/bwmarrin/discordgo"
)

// ErrUnavailable is returned by a MemoryStore configured to fail.
var ErrUnavailable = errors.New("datastore unavailable")

// MemoryStore is an in-memory sticky.Store.
type MemoryStore struct {
	mu      sync.Mutex
	records []types.StickyMessage
	nextID  int64

	// Fail makes every call return ErrUnavailable.
	Fail bool
	// ListCalls counts calls to List.
	ListCalls int
}

// NewMemoryStore returns a store holding the given records.
func NewMemoryStore(records ...types.StickyMessage) *MemoryStore {
	store := &MemoryStore{}
	for _, record := range records {
		store.nextID++
		record.ID = store.nextID
		store.records = append(store.records, record)
	}
	return store
}

func (s *MemoryStore) List(_ context.Context) ([]types.StickyMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.Fail {
		return nil, ErrUnavailable
	}
	return slices.Clone(s.records), nil
}

func (s *MemoryStore) Insert(_ context.Context, message *types.StickyMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrUnavailable
	}
	s.nextID++
	message.ID = s.nextID
	s.records = append(s.records, *message)
	return nil
}

func (s *MemoryStore) UpdateMessageID(_ context.Context, oldID, newID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrUnavailable
	}
	for i := range s.records {
		if s.records[i].MessageID == oldID {
			s.records[i].MessageID = newID
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrUnavailable
	}
	s.records = slices.DeleteFunc(s.records, func(record types.StickyMessage) bool {
		return record.MessageID == messageID
	})
	return nil
}

// Records returns a copy of the stored records.
func (s *MemoryStore) Records() []types.StickyMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Messenger is an in-memory Discord channel backend.
type Messenger struct {
	mu       sync.Mutex
	nextID   int64
	messages map[string]*discordgo.Message

	// Deleted lists the ids of deleted messages, in order.
	Deleted []string
	// FailSend makes ChannelMessageSend fail.
	FailSend bool
}

// NewMessenger returns a messenger whose message ids start at 5000.
func NewMessenger() *Messenger {
	return &Messenger{nextID: 5000, messages: map[string]*discordgo.Message{}}
}

// Post stores a message as if someone had sent it and returns it.
func (m *Messenger) Post(channelID, content string) *discordgo.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.post(channelID, content)
}

// Put stores a message with a known id.
func (m *Messenger) Put(channelID, messageID, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[messageID] = &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}
}

// Forget removes a message without recording it as deleted by the bot.
func (m *Messenger) Forget(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, messageID)
}

// Live returns the messages currently in a channel, oldest first.
func (m *Messenger) Live(channelID string) []*discordgo.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := []*discordgo.Message{}
	for _, message := range m.messages {
		if message.ChannelID == channelID {
			live = append(live, message)
		}
	}
	slices.SortFunc(live, func(a, b *discordgo.Message) int {
		x, _ := strconv.ParseInt(a.ID, 10, 64)
		y, _ := strconv.ParseInt(b.ID, 10, 64)
		return int(x - y)
	})
	return live
}

func (m *Messenger) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	message, ok := m.messages[messageID]
	if !ok || message.ChannelID != channelID {
		return nil, UnknownMessage()
	}
	return message, nil
}

func (m *Messenger) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSend {
		return nil, errors.New("send failed")
	}
	return m.post(channelID, content), nil
}

func (m *Messenger) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	message, ok := m.messages[messageID]
	if !ok || message.ChannelID != channelID {
		return UnknownMessage()
	}
	delete(m.messages, messageID)
	m.Deleted = append(m.Deleted, messageID)
	return nil
}

func (m *Messenger) post(channelID, content string) *discordgo.Message {
	m.nextID++
	message := &discordgo.Message{
		ID:        strconv.FormatInt(m.nextID, 10),
		ChannelID: channelID,
		Content:   content,
	}
	m.messages[message.ID] = message
	return message
}

// UnknownMessage returns the error Discord answers with for a missing message.
func UnknownMessage() error {
	return &discordgo.RESTError{
		Response:     &http.Response{Status: "404 Not Found", StatusCode: http.StatusNotFound},
		ResponseBody: []byte(`{"message": "Unknown Message", "code": 10008}`),
		Message:      &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"},
	}
}
