package mention

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/opsdesk/models"
)

type fakeLookup struct {
	entries map[string][]models.Suggestion // "kind:name" → matches
	err     error
}

func (l *fakeLookup) LookupByDisplayName(ctx context.Context, kind models.MentionKind, displayName string) ([]models.Suggestion, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.entries[string(kind)+":"+displayName], nil
}

func TestResolverPinnedMention(t *testing.T) {
	r := NewResolver(&fakeLookup{})

	content := "merhaba @João Silva bakar mısın"
	pins := []models.MentionInput{
		{Kind: models.MentionUser, TargetID: "u1", DisplayName: "João Silva"},
	}

	mentions, err := r.Resolve(context.Background(), content, pins)
	require.NoError(t, err)
	require.Len(t, mentions, 1)

	m := mentions[0]
	assert.Equal(t, "u1", m.TargetID)
	assert.Equal(t, "João Silva", m.DisplayName)
	// Aralık content'in içindeki "@João Silva" span'ını göstermeli
	assert.Equal(t, "@João Silva", content[m.StartIndex:m.EndIndex])
	assert.True(t, ValidateRanges(content, mentions))
}

func TestResolverPinMatchesAllOccurrences(t *testing.T) {
	r := NewResolver(&fakeLookup{})

	content := "@Ana bak, @Ana onayladı mı"
	pins := []models.MentionInput{
		{Kind: models.MentionUser, TargetID: "u1", DisplayName: "Ana"},
	}

	mentions, err := r.Resolve(context.Background(), content, pins)
	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.Equal(t, 0, mentions[0].StartIndex)
	assert.Equal(t, "u1", mentions[1].TargetID)
	assert.True(t, ValidateRanges(content, mentions))
}

func TestResolverPinDoesNotMatchLongerWord(t *testing.T) {
	r := NewResolver(&fakeLookup{})

	// "@Mariana" içindeki "@Maria" pin'e eşleşmemeli
	content := "selam @Mariana"
	pins := []models.MentionInput{
		{Kind: models.MentionUser, TargetID: "u1", DisplayName: "Maria"},
	}

	mentions, err := r.Resolve(context.Background(), content, pins)
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

func TestResolverBareTokenLookup(t *testing.T) {
	r := NewResolver(&fakeLookup{
		entries: map[string][]models.Suggestion{
			"task:deploy": {{Kind: models.MentionTask, ID: "t1", DisplayName: "deploy"}},
		},
	})

	content := "#deploy bitti mi, @bilinmeyen haber versin"

	mentions, err := r.Resolve(context.Background(), content, nil)
	require.NoError(t, err)
	require.Len(t, mentions, 1)

	// "deploy" çözüldü; dizinde olmayan "@bilinmeyen" düz metin kaldı
	assert.Equal(t, models.MentionTask, mentions[0].Kind)
	assert.Equal(t, "t1", mentions[0].TargetID)
	assert.Equal(t, "#deploy", content[mentions[0].StartIndex:mentions[0].EndIndex])
}

func TestResolverAmbiguousNameFirstMatchWins(t *testing.T) {
	r := NewResolver(&fakeLookup{
		entries: map[string][]models.Suggestion{
			"user:Ana": {
				{Kind: models.MentionUser, ID: "u1", DisplayName: "Ana"},
				{Kind: models.MentionUser, ID: "u2", DisplayName: "Ana"},
			},
		},
	})

	mentions, err := r.Resolve(context.Background(), "@Ana onaylar mısın", nil)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, "u1", mentions[0].TargetID)
}

func TestResolverPinTakesPrecedenceOverLookup(t *testing.T) {
	r := NewResolver(&fakeLookup{
		entries: map[string][]models.Suggestion{
			"user:Ana": {{Kind: models.MentionUser, ID: "wrong", DisplayName: "Ana"}},
		},
	})

	pins := []models.MentionInput{
		{Kind: models.MentionUser, TargetID: "u1", DisplayName: "Ana"},
	}

	mentions, err := r.Resolve(context.Background(), "@Ana selam", pins)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	// Pin'li span çıplak token lookup'ına düşmez
	assert.Equal(t, "u1", mentions[0].TargetID)
}

func TestResolverSortsByStartIndex(t *testing.T) {
	r := NewResolver(&fakeLookup{
		entries: map[string][]models.Suggestion{
			"user:berk": {{Kind: models.MentionUser, ID: "u2", DisplayName: "berk"}},
		},
	})

	content := "@berk ve ^Website Redesign durumu"
	pins := []models.MentionInput{
		{Kind: models.MentionProject, TargetID: "p1", DisplayName: "Website Redesign"},
	}

	mentions, err := r.Resolve(context.Background(), content, pins)
	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.Equal(t, "u2", mentions[0].TargetID)
	assert.Equal(t, "p1", mentions[1].TargetID)
	assert.True(t, mentions[0].StartIndex < mentions[1].StartIndex)
}

func TestResolverLookupError(t *testing.T) {
	wantErr := errors.New("directory unavailable")
	r := NewResolver(&fakeLookup{err: wantErr})

	_, err := r.Resolve(context.Background(), "@Ana", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestResolverIgnoresInvalidPins(t *testing.T) {
	r := NewResolver(&fakeLookup{})

	pins := []models.MentionInput{
		{Kind: "bogus", TargetID: "x", DisplayName: "Ana"},
		{Kind: models.MentionUser, TargetID: "", DisplayName: "Ana"},
		{Kind: models.MentionUser, TargetID: "u1", DisplayName: ""},
	}

	mentions, err := r.Resolve(context.Background(), "Ana selam", pins)
	require.NoError(t, err)
	assert.Empty(t, mentions)
}
