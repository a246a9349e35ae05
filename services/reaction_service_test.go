package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/ws"
)

func newReactionServiceForTest(t *testing.T) (ReactionService, *fakeReactionRepo, *fakeHub, string) {
	t.Helper()
	reactionRepo := newFakeReactionRepo()
	messageRepo := newFakeMessageRepo()
	hub := newFakeHub()

	msg := &models.Message{ChannelID: "c1", AuthorID: "u1", Content: "selam"}
	require.NoError(t, messageRepo.Create(context.Background(), msg))

	svc := NewReactionService(reactionRepo, messageRepo, hub)
	return svc, reactionRepo, hub, msg.ID
}

func TestAddReaction(t *testing.T) {
	svc, reactionRepo, hub, msgID := newReactionServiceForTest(t)

	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "👍"))

	groups, err := reactionRepo.GetByMessageID(context.Background(), msgID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "👍", groups[0].Emoji)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, []string{"u2"}, groups[0].Users)

	assert.Len(t, hub.eventsByOp(ws.OpReactionUpdate), 1)
}

func TestAddReactionIdempotent(t *testing.T) {
	svc, reactionRepo, hub, msgID := newReactionServiceForTest(t)

	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "👍"))
	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "👍"))

	groups, err := reactionRepo.GetByMessageID(context.Background(), msgID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)

	// İkinci ekleme değişiklik yaratmadı — broadcast tekrarlanmaz
	assert.Len(t, hub.eventsByOp(ws.OpReactionUpdate), 1)
}

func TestAddReactionGroupsByEmoji(t *testing.T) {
	svc, reactionRepo, _, msgID := newReactionServiceForTest(t)

	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "👍"))
	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u3", "👍"))
	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "🎉"))

	groups, err := reactionRepo.GetByMessageID(context.Background(), msgID)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "👍", groups[0].Emoji)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, []string{"u2", "u3"}, groups[0].Users)
	assert.Equal(t, "🎉", groups[1].Emoji)
	assert.Equal(t, 1, groups[1].Count)
}

func TestRemoveReaction(t *testing.T) {
	svc, reactionRepo, hub, msgID := newReactionServiceForTest(t)

	require.NoError(t, svc.AddReaction(context.Background(), msgID, "u2", "👍"))
	require.NoError(t, svc.RemoveReaction(context.Background(), msgID, "u2", "👍"))

	// Set boşaldı — grup tamamen kaybolur, sıfır count'lu grup kalmaz
	groups, err := reactionRepo.GetByMessageID(context.Background(), msgID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	// add + remove = 2 broadcast
	assert.Len(t, hub.eventsByOp(ws.OpReactionUpdate), 2)
}

func TestRemoveReactionIdempotent(t *testing.T) {
	svc, _, hub, msgID := newReactionServiceForTest(t)

	// Olmayan tepkiyi silmek hata değildir ve broadcast üretmez
	require.NoError(t, svc.RemoveReaction(context.Background(), msgID, "u2", "👍"))
	assert.Empty(t, hub.eventsByOp(ws.OpReactionUpdate))
}

func TestReactionUnknownMessage(t *testing.T) {
	svc, _, _, _ := newReactionServiceForTest(t)

	err := svc.AddReaction(context.Background(), "yok", "u2", "👍")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	err = svc.RemoveReaction(context.Background(), "yok", "u2", "👍")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestReactionEmojiValidation(t *testing.T) {
	svc, _, _, msgID := newReactionServiceForTest(t)

	err := svc.AddReaction(context.Background(), msgID, "u2", "")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	tooLong := strings.Repeat("x", MaxEmojiLength+1)
	err = svc.AddReaction(context.Background(), msgID, "u2", tooLong)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
