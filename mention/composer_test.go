package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/opsdesk/models"
)

func suggestion(kind models.MentionKind, id, name string) models.Suggestion {
	return models.Suggestion{Kind: kind, ID: id, DisplayName: name}
}

func TestComposerSetTextOpensSession(t *testing.T) {
	c := NewComposer()

	query, ok := c.SetText("Oi @Jo", 6)
	require.True(t, ok)
	assert.Equal(t, "Jo", query)
	assert.True(t, c.Active())
	assert.Equal(t, models.MentionUser, c.Kind())

	// Trigger'sız metin oturumu kapatır
	_, ok = c.SetText("Oi selam", 8)
	assert.False(t, ok)
	assert.False(t, c.Active())
}

func TestComposerCommitReplacesTokenAndPins(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("Oi @Joh", 7)
	require.True(t, ok)

	c.SetSuggestions([]models.Suggestion{
		suggestion(models.MentionUser, "u1", "João Silva"),
	})

	require.True(t, c.Commit())

	// "@Joh" → "@João Silva " — trailing space dahil
	assert.Equal(t, "Oi @João Silva ", c.Text())
	assert.Equal(t, len("Oi @João Silva "), c.Cursor())
	assert.False(t, c.Active())

	pins := c.Pins()
	require.Len(t, pins, 1)
	assert.Equal(t, models.MentionInput{
		Kind:        models.MentionUser,
		TargetID:    "u1",
		DisplayName: "João Silva",
	}, pins[0])
}

func TestComposerCommitWithoutSuggestions(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("@x", 2)
	require.True(t, ok)

	assert.False(t, c.Commit())
	assert.Equal(t, "@x", c.Text())
	assert.Empty(t, c.Pins())
}

func TestComposerKeyboardNavigation(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("#de", 3)
	require.True(t, ok)

	c.SetSuggestions([]models.Suggestion{
		suggestion(models.MentionTask, "t1", "deploy"),
		suggestion(models.MentionTask, "t2", "design_review"),
		suggestion(models.MentionTask, "t3", "demo_prep"),
	})

	sel, ok := c.Highlighted()
	require.True(t, ok)
	assert.Equal(t, "t1", sel.ID)

	c.Next()
	sel, _ = c.Highlighted()
	assert.Equal(t, "t2", sel.ID)

	// Dairesel: sondan başa
	c.Next()
	c.Next()
	sel, _ = c.Highlighted()
	assert.Equal(t, "t1", sel.ID)

	// Dairesel: baştan sona
	c.Prev()
	sel, _ = c.Highlighted()
	assert.Equal(t, "t3", sel.ID)
}

func TestComposerDismissKeepsText(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("bak ^web", 8)
	require.True(t, ok)
	c.SetSuggestions([]models.Suggestion{
		suggestion(models.MentionProject, "p1", "website"),
	})

	c.Dismiss()

	assert.False(t, c.Active())
	assert.Equal(t, "bak ^web", c.Text())
	assert.Empty(t, c.Pins())

	_, ok = c.Highlighted()
	assert.False(t, ok)
}

func TestComposerLateSuggestionsIgnoredAfterClose(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("@an", 3)
	require.True(t, ok)
	c.Dismiss()

	// Süperseded arama geç döndü — kapalı oturumu yeniden açmamalı
	c.SetSuggestions([]models.Suggestion{
		suggestion(models.MentionUser, "u1", "Ana"),
	})

	assert.False(t, c.Active())
	assert.Empty(t, c.Suggestions())
}

func TestComposerNewSessionClearsOldSuggestions(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("@an", 3)
	require.True(t, ok)
	c.SetSuggestions([]models.Suggestion{
		suggestion(models.MentionUser, "u1", "Ana"),
	})

	// Farklı bir trigger'a geçiş — eski öneriler geçersiz
	_, ok = c.SetText("@an #de", 7)
	require.True(t, ok)
	assert.Equal(t, models.MentionTask, c.Kind())
	assert.Empty(t, c.Suggestions())
}

func TestComposerCommitDeduplicatesPins(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("@Ana", 4)
	require.True(t, ok)
	c.SetSuggestions([]models.Suggestion{suggestion(models.MentionUser, "u1", "Ana")})
	require.True(t, c.Commit())

	text := c.Text() + "ve yine @Ana"
	_, ok = c.SetText(text, len(text))
	require.True(t, ok)
	c.SetSuggestions([]models.Suggestion{suggestion(models.MentionUser, "u1", "Ana")})
	require.True(t, c.Commit())

	// Aynı kayıt iki kez commit edildi — tek pin yeterli
	assert.Len(t, c.Pins(), 1)
}

func TestComposerReset(t *testing.T) {
	c := NewComposer()

	_, ok := c.SetText("@Ana", 4)
	require.True(t, ok)
	c.SetSuggestions([]models.Suggestion{suggestion(models.MentionUser, "u1", "Ana")})
	require.True(t, c.Commit())

	c.Reset()

	assert.Empty(t, c.Text())
	assert.Zero(t, c.Cursor())
	assert.Empty(t, c.Pins())
	assert.False(t, c.Active())
}
