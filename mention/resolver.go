package mention

import (
	"context"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
)

// Lookup, display name'den directory kaydı çözen contract.
// Birden fazla eşleşme dönebilir — çakışma kararını Resolver verir.
type Lookup interface {
	LookupByDisplayName(ctx context.Context, kind models.MentionKind, displayName string) ([]models.Suggestion, error)
}

// Resolver, gönderim anında nihai mesaj metnini Mention kayıtlarına çözer.
//
// İki kaynak birleştirilir:
//  1. Pin'ler — composer'ın commit anında sabitlediği {kind, id, displayName}
//     kayıtları. Metinde "<trigger><displayName>" span'ı aranır; bulunan her
//     geçiş pin'in id'siyle işaretlenir. Directory'ye tekrar sorulmaz.
//  2. Çıplak token'lar — pin'lere denk gelmeyen "[@#^]kelime" geçişleri.
//     Display name ile directory lookup yapılır; birden fazla kayıt aynı
//     ismi taşıyorsa ilk eşleşme kazanır ve çakışma loglanır (fatal değil).
//
// Üretilen aralıklar content içinde kalır ve örtüşmez.
type Resolver struct {
	lookup Lookup
}

// NewResolver, constructor.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve, content'i tarar ve Mention kayıtlarını üretir.
// Çözülemeyen token'lar sessizce atlanır — düz metin olarak kalırlar.
func (r *Resolver) Resolve(ctx context.Context, content string, pins []models.MentionInput) ([]models.Mention, error) {
	var mentions []models.Mention
	var claimed []span

	// 1. Pin'lenmiş mention'lar: metindeki TÜM "<trigger><displayName>"
	// geçişleri pin'in id'sine bağlanır.
	for _, pin := range pins {
		if !pin.Kind.Valid() || pin.TargetID == "" || pin.DisplayName == "" {
			continue
		}
		needle := string(pin.Kind.Trigger()) + pin.DisplayName
		for _, sp := range findSpans(content, needle, claimed) {
			claimed = append(claimed, sp)
			mentions = append(mentions, models.Mention{
				Kind:        pin.Kind,
				TargetID:    pin.TargetID,
				DisplayName: pin.DisplayName,
				StartIndex:  sp.start,
				EndIndex:    sp.end,
			})
		}
	}

	// 2. Kalan çıplak token'lar: display name ile directory lookup.
	for _, tok := range ScanTokens(content) {
		if overlapsAny(span{tok.Start, tok.End}, claimed) {
			continue
		}

		matches, err := r.lookup.LookupByDisplayName(ctx, tok.Kind, tok.Text)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			continue // Dizin kaydı yok — düz metin
		}
		if len(matches) > 1 {
			// Display name çakışması — ilk eşleşme kazanır, kaybı görünür kıl.
			log.Printf("[mention] %v: %q matches %d %s entries, using %s",
				pkg.ErrMentionAmbiguous, tok.Text, len(matches), tok.Kind, matches[0].ID)
		}

		claimed = append(claimed, span{tok.Start, tok.End})
		mentions = append(mentions, models.Mention{
			Kind:        tok.Kind,
			TargetID:    matches[0].ID,
			DisplayName: matches[0].DisplayName,
			StartIndex:  tok.Start,
			EndIndex:    tok.End,
		})
	}

	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].StartIndex < mentions[j].StartIndex
	})

	return mentions, nil
}

type span struct {
	start, end int
}

func overlapsAny(sp span, claimed []span) bool {
	for _, c := range claimed {
		if sp.start < c.end && c.start < sp.end {
			return true
		}
	}
	return false
}

// findSpans, needle'ın content içindeki kelime-sınırlı, henüz
// sahiplenilmemiş tüm geçişlerini döner.
func findSpans(content, needle string, claimed []span) []span {
	var spans []span
	offset := 0
	for {
		idx := strings.Index(content[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)
		offset = start + 1

		if !boundaryBefore(content, start) {
			continue
		}
		// Token sonrasında kelime karakteri varsa bu geçiş daha uzun bir
		// kelimenin parçasıdır ("@Maria" vs "@Mariana") — eşleşme sayılmaz.
		if end < len(content) {
			next, _ := utf8.DecodeRuneInString(content[end:])
			if isWordRune(next) {
				continue
			}
		}
		if overlapsAny(span{start, end}, claimed) {
			continue
		}
		spans = append(spans, span{start, end})
		claimed = append(claimed, span{start, end})
	}
	return spans
}
