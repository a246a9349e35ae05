package models

// MentionKind, mention'ın hedef directory türünü temsil eder.
// Trigger karakteri eşlemesi: '@' → user, '#' → task, '^' → project.
type MentionKind string

const (
	MentionUser    MentionKind = "user"
	MentionTask    MentionKind = "task"
	MentionProject MentionKind = "project"
)

// Valid, bilinen bir mention türü olup olmadığını kontrol eder.
func (k MentionKind) Valid() bool {
	switch k {
	case MentionUser, MentionTask, MentionProject:
		return true
	}
	return false
}

// Trigger, mention türünün compose trigger karakterini döner.
func (k MentionKind) Trigger() byte {
	switch k {
	case MentionTask:
		return '#'
	case MentionProject:
		return '^'
	default:
		return '@'
	}
}

// KindForTrigger, trigger karakterinden mention türünü döner.
func KindForTrigger(ch byte) (MentionKind, bool) {
	switch ch {
	case '@':
		return MentionUser, true
	case '#':
		return MentionTask, true
	case '^':
		return MentionProject, true
	}
	return "", false
}

// Mention, mesaj metninden bir directory kaydına çözülmüş referanstır.
// DB'deki "mentions" tablosunun Go karşılığı.
//
// StartIndex/EndIndex, gönderim anındaki Message.Content içine half-open
// byte aralığıdır [start, end). Aralıklar content sınırları içinde kalır
// ve birbiriyle örtüşmez — mention paketi bunu garanti eder.
type Mention struct {
	ID          string      `json:"id,omitempty"`
	MessageID   string      `json:"message_id,omitempty"`
	Kind        MentionKind `json:"kind"`
	TargetID    string      `json:"target_id"`
	DisplayName string      `json:"display_name"`
	StartIndex  int         `json:"start_index"`
	EndIndex    int         `json:"end_index"`
}

// MentionInput, client'ın commit anında sabitlediği mention bilgisi.
// Aralık içermez — byte aralıkları gönderim anında server tarafında,
// nihai content üzerinde hesaplanır (metin commit'ten sonra düzenlenmiş
// olabilir, client offset'lerine güvenilmez).
type MentionInput struct {
	Kind        MentionKind `json:"kind"`
	TargetID    string      `json:"target_id"`
	DisplayName string      `json:"display_name"`
}
