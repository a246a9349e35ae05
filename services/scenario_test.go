package services

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/opsdesk/database"
	"github.com/akinalp/opsdesk/mention"
	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/repository"
	"github.com/akinalp/opsdesk/ws"
)

// scenarioEnv, gerçek SQLite repo'ları + gerçek service'lerle uçtan uca
// akışı kurar. Fake'lerle test edilen parçaların birlikte de doğru
// çalıştığını tek bir senaryo üzerinden doğrular.
type scenarioEnv struct {
	conn     *sql.DB
	hub      *fakeHub
	channels ChannelService
	messages MessageService
}

func newScenarioEnv(t *testing.T) *scenarioEnv {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "scenario.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Conn.Close() })

	channelRepo := repository.NewSQLiteChannelRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)
	mentionRepo := repository.NewSQLiteMentionRepo(db.Conn)
	reactionRepo := repository.NewSQLiteReactionRepo(db.Conn)
	attachmentRepo := repository.NewSQLiteAttachmentRepo(db.Conn)
	readStateRepo := repository.NewSQLiteReadStateRepo(db.Conn)
	directoryRepo := repository.NewSQLiteDirectoryRepo(db.Conn)

	hub := newFakeHub()

	suggestService := NewSuggestService(directoryRepo)
	t.Cleanup(suggestService.Close)
	resolver := mention.NewResolver(suggestService)

	channelService := NewChannelService(channelRepo, messageRepo, readStateRepo, nil, nil, hub)
	messageService := NewMessageService(
		messageRepo, channelRepo, mentionRepo, reactionRepo,
		attachmentRepo, directoryRepo, resolver, nil, hub,
	)

	return &scenarioEnv{
		conn:     db.Conn,
		hub:      hub,
		channels: channelService,
		messages: messageService,
	}
}

func (e *scenarioEnv) seedDirectoryUser(t *testing.T, id, displayName string) {
	t.Helper()
	_, err := e.conn.ExecContext(context.Background(),
		`INSERT INTO directory_users (id, display_name) VALUES (?, ?)`, id, displayName)
	require.NoError(t, err)
}

// Kanal kur → mesaj gönder → listele → okundu işaretle akışının tamamı.
func TestTeamChannelConversationFlow(t *testing.T) {
	env := newScenarioEnv(t)
	ctx := context.Background()
	env.seedDirectoryUser(t, "u2", "Maria")

	ch, err := env.channels.CreateChannel(ctx, &models.CreateChannelRequest{
		Name:         "equipe",
		Type:         "public",
		Participants: []string{"u1", "u2"},
	}, "u1")
	require.NoError(t, err)

	msg, err := env.messages.SendMessage(ctx, ch.ID, "u1", "João",
		&models.CreateMessageRequest{Content: "Oi @Maria"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.Seq)

	// bare token gönderim anında directory'den çözülür
	require.Len(t, msg.Mentions, 1)
	assert.Equal(t, "u2", msg.Mentions[0].TargetID)
	assert.Equal(t, models.MentionUser, msg.Mentions[0].Kind)
	assert.Equal(t, "@Maria", msg.Content[msg.Mentions[0].StartIndex:msg.Mentions[0].EndIndex])

	// Maria kanalı listeler: son mesaj önizlemesi + 1 okunmamış
	listed, err := env.channels.ListChannels(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].LastMessage)
	assert.Equal(t, "Oi @Maria", listed[0].LastMessage.Content)
	assert.Equal(t, 1, listed[0].UnreadCount)

	// yazarın kendi mesajı kendisine okunmamış sayılmaz
	listed, err = env.channels.ListChannels(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, listed[0].UnreadCount)

	// Maria okur: badge sıfırlanır, read_state_update yayınlanır
	require.NoError(t, env.channels.MarkRead(ctx, "u2", ch.ID, 0))

	listed, err = env.channels.ListChannels(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, listed[0].UnreadCount)

	assert.NotEmpty(t, env.hub.eventsByOp(ws.OpMessageCreate))
	assert.NotEmpty(t, env.hub.eventsByOp(ws.OpReadStateUpdate))

	// tekrar okundu işaretlemek no-op'tur, hata üretmez
	require.NoError(t, env.channels.MarkRead(ctx, "u2", ch.ID, 0))
}
