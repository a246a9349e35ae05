package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/opsdesk/mention"
	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/pkg/email"
	"github.com/akinalp/opsdesk/ws"
)

type messageTestEnv struct {
	svc            MessageService
	channelRepo    *fakeChannelRepo
	messageRepo    *fakeMessageRepo
	attachmentRepo *fakeAttachmentRepo
	mentionRepo    *fakeMentionRepo
	directoryRepo  *fakeDirectoryRepo
	emailSender    *fakeEmailSender
	hub            *fakeHub
	channel        *models.Channel
}

func newMessageTestEnv(emailSender email.EmailSender) *messageTestEnv {
	env := &messageTestEnv{
		channelRepo:    newFakeChannelRepo(),
		messageRepo:    newFakeMessageRepo(),
		attachmentRepo: newFakeAttachmentRepo(),
		mentionRepo:    newFakeMentionRepo(),
		directoryRepo:  newFakeDirectoryRepo(),
		hub:            newFakeHub(),
	}
	if fake, ok := emailSender.(*fakeEmailSender); ok {
		env.emailSender = fake
	}

	resolver := mention.NewResolver(env.directoryRepo)
	env.svc = NewMessageService(
		env.messageRepo, env.channelRepo, env.mentionRepo, newFakeReactionRepo(),
		env.attachmentRepo, env.directoryRepo, resolver, emailSender, env.hub,
	)
	env.channel = env.channelRepo.seed(&models.Channel{Name: "genel", Type: models.ChannelTypePublic})
	return env
}

func TestSendMessageAssignsSequentialSeq(t *testing.T) {
	env := newMessageTestEnv(nil)

	for i := 1; i <= 3; i++ {
		msg, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
			Content: fmt.Sprintf("mesaj %d", i),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), msg.Seq)
	}

	assert.Len(t, env.hub.eventsByOp(ws.OpMessageCreate), 3)
}

func TestSendMessageEmptyContentWithoutAttachments(t *testing.T) {
	env := newMessageTestEnv(nil)

	_, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
		Content: "   ",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Empty(t, env.hub.eventsByOp(ws.OpMessageCreate))
}

func TestSendMessageAttachmentOnly(t *testing.T) {
	env := newMessageTestEnv(nil)

	att := &models.Attachment{Filename: "rapor.pdf", FileURL: "/api/uploads/x_rapor.pdf", UploadedBy: "u1"}
	require.NoError(t, env.attachmentRepo.Create(context.Background(), att))

	msg, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
		AttachmentIDs: []string{att.ID},
	})
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "rapor.pdf", msg.Attachments[0].Filename)

	// Ek artık mesaja bağlı — bir daha claim edilemez
	claimed, err := env.attachmentRepo.GetByID(context.Background(), att.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.MessageID)
	assert.Equal(t, msg.ID, *claimed.MessageID)
}

func TestSendMessageClaimFailureRollsBack(t *testing.T) {
	env := newMessageTestEnv(nil)

	_, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
		Content:       "ekli mesaj",
		AttachmentIDs: []string{"hayalet-ek"},
	})
	require.ErrorIs(t, err, pkg.ErrUploadFailure)

	// Mesaj insert geri alındı — kanal akışında yarım mesaj kalmaz
	page, err := env.svc.ListMessages(context.Background(), env.channel.ID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
	assert.Empty(t, env.hub.eventsByOp(ws.OpMessageCreate))
}

func TestSendMessageResolvesMentions(t *testing.T) {
	env := newMessageTestEnv(nil)
	env.directoryRepo.seedUser(&models.DirectoryUser{ID: "u7", DisplayName: "Ana"})

	msg, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Berk", &models.CreateMessageRequest{
		Content: "@Ana rapora bakar mısın",
	})
	require.NoError(t, err)

	require.Len(t, msg.Mentions, 1)
	assert.Equal(t, "u7", msg.Mentions[0].TargetID)
	assert.Equal(t, "@Ana", msg.Content[msg.Mentions[0].StartIndex:msg.Mentions[0].EndIndex])
}

func TestSendMessageUnknownChannel(t *testing.T) {
	env := newMessageTestEnv(nil)

	_, err := env.svc.SendMessage(context.Background(), "yok", "u1", "Ana", &models.CreateMessageRequest{
		Content: "selam",
	})
	assert.ErrorIs(t, err, pkg.ErrChannelNotFound)
}

func TestSendMessageEmailsOfflineMentions(t *testing.T) {
	sender := &fakeEmailSender{}
	env := newMessageTestEnv(sender)

	offlineEmail := "offline@opsdesk.dev"
	onlineEmail := "online@opsdesk.dev"
	env.directoryRepo.seedUser(&models.DirectoryUser{ID: "u-off", DisplayName: "Cem", Email: &offlineEmail})
	env.directoryRepo.seedUser(&models.DirectoryUser{ID: "u-on", DisplayName: "Deniz", Email: &onlineEmail})
	env.hub.online["u-on"] = true

	_, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
		Content: "@Cem ve @Deniz toplantı 15:00'te",
	})
	require.NoError(t, err)

	// Email gönderimi goroutine'de — tamamlanmasını bekle
	require.Eventually(t, func() bool {
		return len(sender.recipients()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Sadece offline kullanıcıya gider; online olan WS'ten zaten aldı
	assert.Equal(t, []string{offlineEmail}, sender.recipients())
}

func TestListMessagesPagination(t *testing.T) {
	env := newMessageTestEnv(nil)

	for i := 1; i <= 7; i++ {
		_, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
			Content: fmt.Sprintf("mesaj %d", i),
		})
		require.NoError(t, err)
	}

	// Son sayfa: en yeni 3 mesaj, ASC sıralı
	page, err := env.svc.ListMessages(context.Background(), env.channel.ID, 3, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(5), page.Messages[0].Seq)
	assert.Equal(t, int64(7), page.Messages[2].Seq)

	// Cursor ile geriye: seq < 5
	page, err = env.svc.ListMessages(context.Background(), env.channel.ID, 3, 5)
	require.NoError(t, err)
	require.Len(t, page.Messages, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(2), page.Messages[0].Seq)
	assert.Equal(t, int64(4), page.Messages[2].Seq)

	// En eski sayfa
	page, err = env.svc.ListMessages(context.Background(), env.channel.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, int64(1), page.Messages[0].Seq)
}

func TestListMessagesAnnotatesGroups(t *testing.T) {
	env := newMessageTestEnv(nil)

	base := time.Now()
	msgs := []struct {
		author string
		offset time.Duration
	}{
		{"u1", 0},
		{"u1", time.Minute},          // aynı yazar, pencere içinde → gruplanır
		{"u2", 2 * time.Minute},      // yazar değişti
		{"u2", 10 * time.Minute},     // pencere aşıldı
	}
	for i, m := range msgs {
		require.NoError(t, env.messageRepo.Create(context.Background(), &models.Message{
			ChannelID: env.channel.ID,
			AuthorID:  m.author,
			Content:   fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(m.offset),
		}))
	}

	page, err := env.svc.ListMessages(context.Background(), env.channel.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 4)

	assert.False(t, page.Messages[0].Grouped)
	assert.True(t, page.Messages[1].Grouped)
	assert.False(t, page.Messages[2].Grouped)
	assert.False(t, page.Messages[3].Grouped)
}

func TestListMessagesHydratesEmptySlices(t *testing.T) {
	env := newMessageTestEnv(nil)

	_, err := env.svc.SendMessage(context.Background(), env.channel.ID, "u1", "Ana", &models.CreateMessageRequest{
		Content: "selam",
	})
	require.NoError(t, err)

	page, err := env.svc.ListMessages(context.Background(), env.channel.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)

	// JSON'da null yerine [] görünsün diye boş dilimler doldurulur
	assert.NotNil(t, page.Messages[0].Reactions)
	assert.NotNil(t, page.Messages[0].Attachments)
	assert.NotNil(t, page.Messages[0].Mentions)
}

func TestSearchMessages(t *testing.T) {
	env := newMessageTestEnv(nil)
	other := env.channelRepo.seed(&models.Channel{Name: "rapor", Type: models.ChannelTypePublic})

	for _, m := range []struct{ channelID, content string }{
		{env.channel.ID, "deploy planı hazır"},
		{env.channel.ID, "öğle yemeği"},
		{other.ID, "deploy ertelendi"},
	} {
		_, err := env.svc.SendMessage(context.Background(), m.channelID, "u1", "Ana", &models.CreateMessageRequest{
			Content: m.content,
		})
		require.NoError(t, err)
	}

	// Kanal kapsamli arama
	results, err := env.svc.SearchMessages(context.Background(), env.channel.ID, "deploy", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "deploy planı hazır", results[0].Content)

	// Tüm kanallarda
	results, err = env.svc.SearchMessages(context.Background(), "", "deploy", 20)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Boş sorgu reddedilir
	_, err = env.svc.SearchMessages(context.Background(), "", "   ", 20)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}
