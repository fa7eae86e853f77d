// Package store holds the in-memory agent messaging state: the agent
// registry, the global message log, and per-agent notification queues.
//
// The store lives for the process lifetime and is never persisted; the
// optional archive mirror is layered on top by the callers. A single
// coarse mutex guards every operation, so each call's full effect
// (message append, notification enqueue, last-seen update) is atomic
// from an observer's point of view.
package store

import (
	"strings"
	"sync"
	"time"

	"parley/internal/models"
)

const (
	// DefaultInboxLimit applies when read-inbox is called without a limit.
	DefaultInboxLimit = 20
	// MaxInboxLimit caps how many messages one read-inbox call returns.
	MaxInboxLimit = 50

	previewLength   = 50
	broadcastPrefix = "[BROADCAST] "
)

type Store struct {
	mu            sync.Mutex
	agents        map[string]*models.Agent
	order         []string // agent keys in registration order
	messages      []*models.Message
	notifications map[string][]models.Notification
	lastID        int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		agents:        make(map[string]*models.Agent),
		notifications: make(map[string][]models.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the canonical lookup form of an agent name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type RegisterParams struct {
	Name        string
	Description string
	Profile     models.Profile
}

type RegisterResult struct {
	Agent   models.Agent `json:"agent"`
	Created bool         `json:"created"`
}

// Register creates an agent on first call for a given key. Re-registering
// the same key merges supplied non-empty profile fields into the existing
// profile and refreshes last-seen; it never creates a second agent and
// never touches the original join time. Only a first registration fans
// out join notifications to the other agents.
func (s *Store) Register(p RegisterParams) RegisterResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	k := Key(p.Name)
	if agent, ok := s.agents[k]; ok {
		agent.LastSeen = now
		if p.Description != "" {
			agent.Description = p.Description
		}
		mergeProfile(&agent.Profile, p.Profile)
		return RegisterResult{Agent: copyAgent(agent), Created: false}
	}

	agent := &models.Agent{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Profile:     copyProfile(p.Profile),
		Joined:      now,
		LastSeen:    now,
	}
	s.agents[k] = agent
	s.order = append(s.order, k)

	text := "New agent joined: " + agent.Name
	if agent.Profile.Role != "" {
		text += " (" + agent.Profile.Role + ")"
	}
	for _, other := range s.order {
		if other == k {
			continue
		}
		s.enqueue(other, text, now)
	}
	return RegisterResult{Agent: copyAgent(agent), Created: true}
}

type SendResult struct {
	ID        int64     `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Send appends a message from one registered agent to another and queues
// a preview notification for the recipient. On failure nothing is
// written, including the sender's last-seen.
func (s *Store) Send(from, to, content string) (SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.agents[Key(from)]
	if !ok {
		return SendResult{}, &NotRegisteredError{Name: from}
	}
	recipientKey := Key(to)
	recipient, ok := s.agents[recipientKey]
	if !ok {
		return SendResult{}, &UnknownRecipientError{Name: to, Known: s.displayNames()}
	}

	now := s.now()
	sender.LastSeen = now
	msg := s.append(sender.Name, recipient.Name, content, now)
	s.enqueue(recipientKey, "New message from "+sender.Name+": "+preview(content), now)

	return SendResult{ID: msg.ID, From: msg.From, To: msg.To, Timestamp: msg.Created}, nil
}

type InboxResult struct {
	Messages []models.Message `json:"messages"`
	// Unread counts the messages still unread after this call.
	Unread int `json:"unread"`
}

// ReadInbox returns the most recent messages addressed to the agent,
// oldest of the selected window first. Every returned message is marked
// read, even when includeRead replays history: viewing a message always
// consumes its unread status.
func (s *Store) ReadInbox(name string, includeRead bool, limit int) (InboxResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := Key(name)
	agent, ok := s.agents[k]
	if !ok {
		return InboxResult{}, &NotRegisteredError{Name: name}
	}
	if limit == 0 {
		limit = DefaultInboxLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxInboxLimit {
		limit = MaxInboxLimit
	}

	var selected []*models.Message
	for _, m := range s.messages {
		if Key(m.To) != k {
			continue
		}
		if !includeRead && m.Read {
			continue
		}
		selected = append(selected, m)
	}
	if len(selected) > limit {
		selected = selected[len(selected)-limit:]
	}

	out := make([]models.Message, 0, len(selected))
	for _, m := range selected {
		m.Read = true
		out = append(out, *m)
	}
	agent.LastSeen = s.now()

	return InboxResult{Messages: out, Unread: s.unread(k)}, nil
}

// ListAgents returns all registered agents in registration order. It is a
// pure read: no last-seen update, no notification side effects.
func (s *Store) ListAgents() []models.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Agent, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, copyAgent(s.agents[k]))
	}
	return out
}

type BroadcastResult struct {
	Recipients []string  `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`

	// Messages carries the created per-recipient messages for mirroring
	// by the caller; it is not part of the tool result payload.
	Messages []models.Message `json:"-"`
}

// Broadcast fans a message out as one independent message plus one
// notification per other registered agent, all sharing one timestamp.
// With no other agents it succeeds with zero recipients.
func (s *Store) Broadcast(from, content string) (BroadcastResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.agents[Key(from)]
	if !ok {
		return BroadcastResult{}, &NotRegisteredError{Name: from}
	}

	now := s.now()
	sender.LastSeen = now
	result := BroadcastResult{Recipients: []string{}, Timestamp: now}
	senderKey := Key(from)
	for _, k := range s.order {
		if k == senderKey {
			continue
		}
		recipient := s.agents[k]
		msg := s.append(sender.Name, recipient.Name, broadcastPrefix+content, now)
		s.enqueue(k, "Broadcast from "+sender.Name+": "+preview(content), now)
		result.Recipients = append(result.Recipients, recipient.Name)
		result.Messages = append(result.Messages, *msg)
	}
	return result, nil
}

type UnreadSummary struct {
	Count int `json:"count"`
	// Senders lists distinct sender display names in order of first
	// appearance among the unread messages.
	Senders []string `json:"senders"`
}

// UnreadCount reports the agent's unread messages without consuming them.
func (s *Store) UnreadCount(name string) (UnreadSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := Key(name)
	agent, ok := s.agents[k]
	if !ok {
		return UnreadSummary{}, &NotRegisteredError{Name: name}
	}
	agent.LastSeen = s.now()

	summary := UnreadSummary{Senders: []string{}}
	seen := make(map[string]bool)
	for _, m := range s.messages {
		if m.Read || Key(m.To) != k {
			continue
		}
		summary.Count++
		if !seen[m.From] {
			seen[m.From] = true
			summary.Senders = append(summary.Senders, m.From)
		}
	}
	return summary, nil
}

// CheckNotifications drains the agent's notification queue: all pending
// entries are returned in enqueue order and removed in the same step, so
// an immediate second call with no new events returns empty.
func (s *Store) CheckNotifications(name string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := Key(name)
	agent, ok := s.agents[k]
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	agent.LastSeen = s.now()

	drained := s.notifications[k]
	delete(s.notifications, k)
	if drained == nil {
		drained = []models.Notification{}
	}
	return drained, nil
}

type ProfileView struct {
	Found bool         `json:"found"`
	Agent models.Agent `json:"agent,omitempty"`
	// Known lists the registered display names when the lookup misses.
	Known []string `json:"known,omitempty"`
}

// ViewProfile looks an agent up by name. An unknown name is a soft miss,
// not an error: the viewer may legitimately be unregistered. Neither the
// viewer's nor the viewed agent's last-seen moves.
func (s *Store) ViewProfile(name string) ProfileView {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[Key(name)]
	if !ok {
		return ProfileView{Found: false, Known: s.displayNames()}
	}
	return ProfileView{Found: true, Agent: copyAgent(agent)}
}

// ProfileUpdate is an explicit partial overwrite: nil means leave the
// field unchanged, any non-nil value (including empty) is applied. This
// is deliberately stricter than Register's merge-if-non-empty.
type ProfileUpdate struct {
	Description         *string
	Role                *string
	RecommendedResource *string
	Skills              *[]string
	Company             *string
	Website             *string
	Location            *string
}

type UpdateResult struct {
	Agent   models.Agent `json:"agent"`
	Changed []string     `json:"changed"`
}

func (s *Store) UpdateProfile(name string, u ProfileUpdate) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[Key(name)]
	if !ok {
		return UpdateResult{}, &NotRegisteredError{Name: name}
	}
	agent.LastSeen = s.now()

	changed := []string{}
	if u.Description != nil {
		agent.Description = *u.Description
		changed = append(changed, "description")
	}
	if u.Role != nil {
		agent.Profile.Role = *u.Role
		changed = append(changed, "role")
	}
	if u.RecommendedResource != nil {
		agent.Profile.RecommendedResource = *u.RecommendedResource
		changed = append(changed, "recommended_resource")
	}
	if u.Skills != nil {
		agent.Profile.Skills = append([]string(nil), *u.Skills...)
		changed = append(changed, "skills")
	}
	if u.Company != nil {
		agent.Profile.Company = *u.Company
		changed = append(changed, "company")
	}
	if u.Website != nil {
		agent.Profile.Website = *u.Website
		changed = append(changed, "website")
	}
	if u.Location != nil {
		agent.Profile.Location = *u.Location
		changed = append(changed, "location")
	}
	return UpdateResult{Agent: copyAgent(agent), Changed: changed}, nil
}

type Stats struct {
	Agents         int `json:"agents"`
	Messages       int `json:"messages"`
	UnreadMessages int `json:"unread_messages"`
}

// GetStats returns aggregate totals for the introspection API.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Agents: len(s.order), Messages: len(s.messages)}
	for _, m := range s.messages {
		if !m.Read {
			stats.UnreadMessages++
		}
	}
	return stats
}

// append allocates the next dense message id and stores the message.
// Callers hold the lock.
func (s *Store) append(from, to, content string, now time.Time) *models.Message {
	s.lastID++
	msg := &models.Message{
		ID:      s.lastID,
		From:    from,
		To:      to,
		Content: content,
		Created: now,
	}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *Store) enqueue(recipientKey, text string, now time.Time) {
	s.notifications[recipientKey] = append(s.notifications[recipientKey], models.Notification{
		Recipient: recipientKey,
		Message:   text,
		Created:   now,
	})
}

func (s *Store) unread(k string) int {
	count := 0
	for _, m := range s.messages {
		if !m.Read && Key(m.To) == k {
			count++
		}
	}
	return count
}

func (s *Store) displayNames() []string {
	names := make([]string, 0, len(s.order))
	for _, k := range s.order {
		names = append(names, s.agents[k].Name)
	}
	return names
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func mergeProfile(dst *models.Profile, src models.Profile) {
	if src.Role != "" {
		dst.Role = src.Role
	}
	if src.RecommendedResource != "" {
		dst.RecommendedResource = src.RecommendedResource
	}
	if len(src.Skills) > 0 {
		dst.Skills = append([]string(nil), src.Skills...)
	}
	if src.Company != "" {
		dst.Company = src.Company
	}
	if src.Website != "" {
		dst.Website = src.Website
	}
	if src.Location != "" {
		dst.Location = src.Location
	}
}

func copyProfile(p models.Profile) models.Profile {
	out := p
	out.Skills = append([]string(nil), p.Skills...)
	return out
}

func copyAgent(a *models.Agent) models.Agent {
	out := *a
	out.Profile = copyProfile(a.Profile)
	return out
}
