// Package mention, mesaj metnindeki mention yaşam döngüsünü yönetir:
// compose sırasında trigger tespiti (Composer), debounce'lu öneri arama
// (Suggester) ve gönderim anında metnin yapısal token'lara çözülmesi
// (Resolver).
//
// Trigger karakterleri: '@' → user, '#' → task, '^' → project.
//
// Eski tasarımdaki "regex bul, ham offset'i taşı" yaklaşımı yerine metin
// her seferinde baştan taranır ve {kind, rawSpan, resolvedID} token'ları
// üretilir — metin tespitten sonra düzenlendiğinde index kayması olmaz.
package mention

import (
	"unicode"
	"unicode/utf8"

	"github.com/akinalp/opsdesk/models"
)

// Token, metinden taranmış tek bir mention adayı.
// Start/End, trigger karakteri dahil half-open byte aralığıdır [Start, End).
type Token struct {
	Kind  models.MentionKind
	Start int
	End   int
	Text  string // Trigger'sız token metni
}

// isWordRune, token gövdesinde kabul edilen karakterleri tanımlar.
// Unicode harfler dahildir — "João" gibi display name'ler ASCII \w ile
// yakalanamazdı.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// boundaryBefore, start index'indeki trigger'ın kelime başlangıcında olup
// olmadığını kontrol eder. "email@test.com" içindeki '@' mention değildir.
func boundaryBefore(content string, start int) bool {
	if start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(content[:start])
	return !isWordRune(prev)
}

// ScanTokens, content içindeki çıplak mention token'larını tarar:
// trigger karakteri + en az bir kelime karakteri (tek kelime).
// Pin'lenmiş multi-word mention'lar Resolver'da ayrıca eşleştirilir.
func ScanTokens(content string) []Token {
	var tokens []Token

	for i := 0; i < len(content); {
		ch := content[i]
		kind, ok := models.KindForTrigger(ch)
		if !ok || !boundaryBefore(content, i) {
			_, size := utf8.DecodeRuneInString(content[i:])
			i += size
			continue
		}

		// Trigger'dan sonraki kelime karakterlerini topla
		end := i + 1
		for end < len(content) {
			r, size := utf8.DecodeRuneInString(content[end:])
			if !isWordRune(r) {
				break
			}
			end += size
		}

		if end > i+1 {
			tokens = append(tokens, Token{
				Kind:  kind,
				Start: i,
				End:   end,
				Text:  content[i+1 : end],
			})
		}
		if end == i {
			end = i + 1
		}
		i = end
	}

	return tokens
}

// TriggerAt, cursor'ın hemen öncesindeki metinde aktif bir mention
// trigger'ı arar. Bulursa türünü, partial query'yi ve trigger'ın byte
// index'ini döner. Cursor bir kelimenin ortasındaysa veya trigger kelime
// başında değilse tetiklenmez.
//
// Örnek: ("Oi @Jo", 6) → (MentionUser, "Jo", 3, true)
func TriggerAt(text string, cursor int) (kind models.MentionKind, query string, start int, ok bool) {
	if cursor < 0 || cursor > len(text) {
		return "", "", 0, false
	}

	// Cursor'dan geriye doğru kelime karakterlerini atla
	i := cursor
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if !isWordRune(r) {
			break
		}
		i -= size
	}

	if i == 0 {
		return "", "", 0, false
	}

	trigger := text[i-1]
	k, isTrigger := models.KindForTrigger(trigger)
	if !isTrigger || !boundaryBefore(text, i-1) {
		return "", "", 0, false
	}

	return k, text[i:cursor], i - 1, true
}

// ValidateRanges, mention aralıklarının content sınırları içinde kaldığını
// ve birbiriyle örtüşmediğini doğrular. Resolver çıktısı bu invariant'ı
// zaten sağlar; client'tan gelen hazır aralıklar için savunma kontrolüdür.
func ValidateRanges(content string, mentions []models.Mention) bool {
	for i, m := range mentions {
		if m.StartIndex < 0 || m.EndIndex > len(content) || m.StartIndex >= m.EndIndex {
			return false
		}
		for j := 0; j < i; j++ {
			if m.StartIndex < mentions[j].EndIndex && mentions[j].StartIndex < m.EndIndex {
				return false
			}
		}
	}
	return true
}
