package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/ws"
)

// ─── Hub fake ───

// fakeHub, yayınlanan event'leri kaydeden ws.EventPublisher implementasyonu.
type fakeHub struct {
	mu     sync.Mutex
	events []ws.Event
	online map[string]bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{online: make(map[string]bool)}
}

func (h *fakeHub) BroadcastToAll(event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *fakeHub) BroadcastToAllExcept(excludeUserID string, event ws.Event) {
	h.BroadcastToAll(event)
}

func (h *fakeHub) BroadcastToUser(userID string, event ws.Event) {
	h.BroadcastToAll(event)
}

func (h *fakeHub) GetOnlineUserIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.online))
	for id := range h.online {
		ids = append(ids, id)
	}
	return ids
}

func (h *fakeHub) IsUserOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[userID]
}

// eventsByOp, kaydedilen event'lerden verilen op'takileri döner.
func (h *fakeHub) eventsByOp(op string) []ws.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []ws.Event
	for _, e := range h.events {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

// ─── Channel repo fake ───

type fakeChannelRepo struct {
	mu       sync.Mutex
	channels map[string]*models.Channel
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: make(map[string]*models.Channel)}
}

func (r *fakeChannelRepo) seed(channel *models.Channel) *models.Channel {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	r.mu.Lock()
	r.channels[channel.ID] = channel
	r.mu.Unlock()
	return channel
}

func (r *fakeChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	channel.ID = uuid.NewString()
	channel.CreatedAt = time.Now()
	r.mu.Lock()
	r.channels[channel.ID] = channel
	r.mu.Unlock()
	return nil
}

func (r *fakeChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pkg.ErrChannelNotFound, id)
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeChannelRepo) GetAll(ctx context.Context) ([]models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channel.ID]; !ok {
		return pkg.ErrChannelNotFound
	}
	cp := *channel
	r.channels[channel.ID] = &cp
	return nil
}

func (r *fakeChannelRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[id]; !ok {
		return pkg.ErrChannelNotFound
	}
	delete(r.channels, id)
	return nil
}

// ─── Message repo fake ───

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*models.Message // id → message
	seqs     map[string]int64           // channelID → son seq
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string]*models.Message),
		seqs:     make(map[string]int64),
	}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[message.ChannelID]++
	message.ID = uuid.NewString()
	message.Seq = r.seqs[message.ChannelID]
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	cp := *message
	r.messages[message.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", pkg.ErrNotFound, id)
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMessageRepo) channelMessagesLocked(channelID string) []models.Message {
	var out []models.Message
	for _, m := range r.messages {
		if m.ChannelID == channelID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (r *fakeMessageRepo) GetByChannelID(ctx context.Context, channelID string, limit int, beforeSeq int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asc := r.channelMessagesLocked(channelID)
	var desc []models.Message
	for i := len(asc) - 1; i >= 0; i-- {
		if beforeSeq > 0 && asc[i].Seq >= beforeSeq {
			continue
		}
		desc = append(desc, asc[i])
		if len(desc) == limit {
			break
		}
	}
	return desc, nil
}

func (r *fakeMessageRepo) GetLatestByChannelIDs(ctx context.Context, channelIDs []string) (map[string]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*models.Message)
	for _, id := range channelIDs {
		msgs := r.channelMessagesLocked(id)
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			out[id] = &last
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Search(ctx context.Context, channelID, query string, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if channelID != "" && m.ChannelID != channelID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Content), strings.ToLower(query)) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) GetMaxSeq(ctx context.Context, channelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seqs[channelID], nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, id)
	return nil
}

// ─── Read state repo fake ───

type fakeReadStateRepo struct {
	mu     sync.Mutex
	states map[string]*models.ReadState // "user/channel" → state
	unread map[string]map[string]int    // userID → channelID → count
}

func newFakeReadStateRepo() *fakeReadStateRepo {
	return &fakeReadStateRepo{
		states: make(map[string]*models.ReadState),
		unread: make(map[string]map[string]int),
	}
}

func readStateKey(userID, channelID string) string { return userID + "/" + channelID }

func (r *fakeReadStateRepo) Upsert(ctx context.Context, state *models.ReadState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := readStateKey(state.UserID, state.ChannelID)
	if existing, ok := r.states[key]; ok && existing.LastReadSeq >= state.LastReadSeq {
		return nil // İmleç geri sarılmaz
	}
	cp := *state
	cp.LastReadAt = time.Now()
	r.states[key] = &cp
	return nil
}

func (r *fakeReadStateRepo) Get(ctx context.Context, userID, channelID string) (*models.ReadState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[readStateKey(userID, channelID)]; ok {
		cp := *state
		return &cp, nil
	}
	return &models.ReadState{UserID: userID, ChannelID: channelID}, nil
}

func (r *fakeReadStateRepo) GetUnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for channelID, count := range r.unread[userID] {
		out[channelID] = count
	}
	return out, nil
}

// ─── Reaction repo fake ───

type fakeReactionRepo struct {
	mu      sync.Mutex
	triples map[string]bool    // "message/user/emoji"
	order   []*models.Reaction // ekleme sırası korunur
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{triples: make(map[string]bool)}
}

func tripleKey(messageID, userID, emoji string) string {
	return messageID + "/" + userID + "/" + emoji
}

func (r *fakeReactionRepo) Add(ctx context.Context, reaction *models.Reaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tripleKey(reaction.MessageID, reaction.UserID, reaction.Emoji)
	if r.triples[key] {
		return false, nil
	}
	r.triples[key] = true
	cp := *reaction
	r.order = append(r.order, &cp)
	return true, nil
}

func (r *fakeReactionRepo) Remove(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tripleKey(messageID, userID, emoji)
	if !r.triples[key] {
		return false, nil
	}
	delete(r.triples, key)
	for i, re := range r.order {
		if re.MessageID == messageID && re.UserID == userID && re.Emoji == emoji {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *fakeReactionRepo) GetByMessageID(ctx context.Context, messageID string) ([]models.ReactionGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groupsLocked(messageID), nil
}

func (r *fakeReactionRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.ReactionGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]models.ReactionGroup)
	for _, id := range messageIDs {
		if groups := r.groupsLocked(id); len(groups) > 0 {
			out[id] = groups
		}
	}
	return out, nil
}

func (r *fakeReactionRepo) groupsLocked(messageID string) []models.ReactionGroup {
	var groups []models.ReactionGroup
	index := make(map[string]int)
	for _, re := range r.order {
		if re.MessageID != messageID {
			continue
		}
		i, ok := index[re.Emoji]
		if !ok {
			index[re.Emoji] = len(groups)
			groups = append(groups, models.ReactionGroup{Emoji: re.Emoji})
			i = len(groups) - 1
		}
		groups[i].Users = append(groups[i].Users, re.UserID)
		groups[i].Count++
	}
	return groups
}

// ─── Attachment repo fake ───

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[string]*models.Attachment
	claimErr    error // Set edilirse Claim bu hatayı döner
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[string]*models.Attachment)}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	attachment.UploadedAt = time.Now()
	cp := *attachment
	r.attachments[attachment.ID] = &cp
	return nil
}

func (r *fakeAttachmentRepo) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok {
		return nil, fmt.Errorf("%w: attachment %s", pkg.ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAttachmentRepo) Claim(ctx context.Context, messageID string, attachmentIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return r.claimErr
	}
	for _, id := range attachmentIDs {
		a, ok := r.attachments[id]
		if !ok || a.MessageID != nil {
			return fmt.Errorf("%w: attachment %s cannot be claimed", pkg.ErrUploadFailure, id)
		}
	}
	for _, id := range attachmentIDs {
		mid := messageID
		r.attachments[id].MessageID = &mid
	}
	return nil
}

func (r *fakeAttachmentRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]models.Attachment)
	for _, id := range messageIDs {
		for _, a := range r.attachments {
			if a.MessageID != nil && *a.MessageID == id {
				out[id] = append(out[id], *a)
			}
		}
	}
	return out, nil
}

// ─── Mention repo fake ───

type fakeMentionRepo struct {
	mu      sync.Mutex
	byMsgID map[string][]models.Mention
}

func newFakeMentionRepo() *fakeMentionRepo {
	return &fakeMentionRepo{byMsgID: make(map[string][]models.Mention)}
}

func (r *fakeMentionRepo) SaveMentions(ctx context.Context, messageID string, mentions []models.Mention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(mentions) > 0 {
		r.byMsgID[messageID] = append([]models.Mention(nil), mentions...)
	}
	return nil
}

func (r *fakeMentionRepo) GetByMessageIDs(ctx context.Context, messageIDs []string) (map[string][]models.Mention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]models.Mention)
	for _, id := range messageIDs {
		if ms, ok := r.byMsgID[id]; ok {
			out[id] = append([]models.Mention(nil), ms...)
		}
	}
	return out, nil
}

// ─── Directory repo fake ───

type fakeDirectoryRepo struct {
	mu          sync.Mutex
	users       map[string]*models.DirectoryUser // id → user
	byName      map[string][]models.Suggestion   // "kind:name" → matches
	searchCalls int                              // cache testleri repo'ya düşen sorguları sayar
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		users:  make(map[string]*models.DirectoryUser),
		byName: make(map[string][]models.Suggestion),
	}
}

func (r *fakeDirectoryRepo) seedUser(user *models.DirectoryUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	key := "user:" + user.DisplayName
	r.byName[key] = append(r.byName[key], models.Suggestion{
		Kind:        models.MentionUser,
		ID:          user.ID,
		DisplayName: user.DisplayName,
	})
}

func (r *fakeDirectoryRepo) SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchCalls++
	var out []models.DirectoryUser
	for _, u := range r.users {
		if strings.HasPrefix(strings.ToLower(u.DisplayName), strings.ToLower(query)) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDirectoryRepo) searchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.searchCalls
}

func (r *fakeDirectoryRepo) SearchTasks(ctx context.Context, query string, limit int) ([]models.DirectoryTask, error) {
	return nil, nil
}

func (r *fakeDirectoryRepo) SearchProjects(ctx context.Context, query string, limit int) ([]models.DirectoryProject, error) {
	return nil, nil
}

func (r *fakeDirectoryRepo) LookupByDisplayName(ctx context.Context, kind models.MentionKind, name string) ([]models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[string(kind)+":"+name], nil
}

func (r *fakeDirectoryRepo) GetUserByID(ctx context.Context, id string) (*models.DirectoryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", pkg.ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeDirectoryRepo) GetUsersByIDs(ctx context.Context, ids []string) ([]models.DirectoryUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DirectoryUser
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ─── Email fake ───

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []string // alıcı adresleri
}

func (s *fakeEmailSender) SendMentionNotification(ctx context.Context, toEmail, authorName, channelName, channelID, preview string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, toEmail)
	return nil
}

func (s *fakeEmailSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}
