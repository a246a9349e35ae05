package mention

import "github.com/akinalp/opsdesk/models"

// Composer, mesaj yazma kutusunun mention durum makinesidir.
//
// Akış:
//  1. Her keystroke'ta SetText çağrılır — cursor öncesinde trigger varsa
//     öneri oturumu açılır ve partial query döner (Suggester'a verilir).
//  2. Öneri sonuçları SetSuggestions ile bağlanır.
//  3. Klavye kontratı: ArrowDown → Next, ArrowUp → Prev (dairesel),
//     Enter/Tab → Commit, Escape → Dismiss.
//  4. Commit, trigger + partial query'yi "<trigger><displayName> " ile
//     değiştirir, cursor'ı token sonrasına taşır ve directory id'yi pin'ler.
//
// Open question kararı: çözümleme commit anında yapılır — pin, directory
// id'yi taşır; display name sadece görüntüleme içindir. Send-time resolver
// pin'leri aralıklarla eşleştirir, isimden yeniden çözmek zorunda kalmaz.
//
// Composer tek bir kullanıcı oturumuna aittir, goroutine-safe değildir.
type Composer struct {
	text   string
	cursor int

	active bool
	kind   models.MentionKind
	start  int // Aktif trigger karakterinin byte index'i
	query  string

	suggestions []models.Suggestion
	highlight   int

	pins []models.MentionInput
}

// NewComposer, boş bir compose oturumu oluşturur.
func NewComposer() *Composer {
	return &Composer{}
}

// SetText, compose buffer'ını günceller ve cursor öncesinde mention
// trigger'ı arar. Trigger bulunursa (query, true) döner — caller query'yi
// Suggester'a iletir. Trigger yoksa varsa açık öneri oturumu kapanır.
func (c *Composer) SetText(text string, cursor int) (query string, ok bool) {
	c.text = text
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	c.cursor = cursor

	kind, q, start, found := TriggerAt(text, cursor)
	if !found {
		c.closeSession()
		return "", false
	}

	if !c.active || c.kind != kind || c.start != start {
		// Yeni oturum — eski öneriler geçersiz
		c.suggestions = nil
		c.highlight = 0
	}
	c.active = true
	c.kind = kind
	c.start = start
	c.query = q
	return q, true
}

// Active, açık bir öneri oturumu olup olmadığını döner.
func (c *Composer) Active() bool { return c.active }

// Kind, aktif oturumun mention türünü döner.
func (c *Composer) Kind() models.MentionKind { return c.kind }

// Text, compose buffer'ının güncel halini döner.
func (c *Composer) Text() string { return c.text }

// Cursor, güncel cursor pozisyonunu (byte) döner.
func (c *Composer) Cursor() int { return c.cursor }

// SetSuggestions, Suggester'dan gelen sonuçları bağlar.
// Highlight listenin başına döner. Oturum kapalıysa sonuçlar yoksayılır —
// geç gelen (superseded) sonuç UI'ı yeniden açmamalı.
func (c *Composer) SetSuggestions(suggestions []models.Suggestion) {
	if !c.active {
		return
	}
	c.suggestions = suggestions
	c.highlight = 0
}

// Suggestions, güncel öneri listesini döner.
func (c *Composer) Suggestions() []models.Suggestion { return c.suggestions }

// Highlighted, seçili öneriyi döner.
func (c *Composer) Highlighted() (models.Suggestion, bool) {
	if !c.active || len(c.suggestions) == 0 {
		return models.Suggestion{}, false
	}
	return c.suggestions[c.highlight], true
}

// Next, highlight'ı bir sonraki öneriye taşır (ArrowDown). Dairesel:
// listenin sonundan başa döner.
func (c *Composer) Next() {
	if len(c.suggestions) == 0 {
		return
	}
	c.highlight = (c.highlight + 1) % len(c.suggestions)
}

// Prev, highlight'ı bir önceki öneriye taşır (ArrowUp). Dairesel.
func (c *Composer) Prev() {
	if len(c.suggestions) == 0 {
		return
	}
	c.highlight = (c.highlight - 1 + len(c.suggestions)) % len(c.suggestions)
}

// Commit, seçili öneriyi metne işler (Enter/Tab).
//
// [start, cursor) aralığı — trigger + partial query — yerine
// "<trigger><displayName> " yazılır, cursor eklenen token'ın sonrasına
// taşınır ve çözülmüş directory id pin'lenir. Öneri yokken false döner.
func (c *Composer) Commit() bool {
	sel, ok := c.Highlighted()
	if !ok {
		return false
	}

	inserted := string(c.kind.Trigger()) + sel.DisplayName + " "
	c.text = c.text[:c.start] + inserted + c.text[c.cursor:]
	c.cursor = c.start + len(inserted)

	// Aynı kaydı ikinci kez pin'leme — resolver her pin için ayrı span arar,
	// aynı mention metinde birden fazla geçiyorsa tek pin yeterlidir.
	for _, p := range c.pins {
		if p.Kind == c.kind && p.TargetID == sel.ID {
			c.closeSession()
			return true
		}
	}
	c.pins = append(c.pins, models.MentionInput{
		Kind:        c.kind,
		TargetID:    sel.ID,
		DisplayName: sel.DisplayName,
	})

	c.closeSession()
	return true
}

// Dismiss, öneri listesini commit etmeden kapatır (Escape).
// Metin ve cursor olduğu gibi kalır.
func (c *Composer) Dismiss() {
	c.closeSession()
}

// Pins, commit anında sabitlenen mention kayıtlarını döner.
// Mesaj gönderilirken CreateMessageRequest.Mentions olarak taşınır.
func (c *Composer) Pins() []models.MentionInput { return c.pins }

// Reset, gönderim sonrası compose oturumunu sıfırlar.
func (c *Composer) Reset() {
	*c = Composer{}
}

func (c *Composer) closeSession() {
	c.active = false
	c.kind = ""
	c.start = 0
	c.query = ""
	c.suggestions = nil
	c.highlight = 0
}
