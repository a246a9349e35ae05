package models

import "time"

// ReadState, bir kullanıcının belirli bir kanaldaki okuma durumunu temsil eder.
//
// Watermark pattern: Her mesajı tek tek "okundu" olarak işaretlemek yerine
// "bu seq'e kadar okudum" bilgisini tutarız. Okunmamış mesaj sayısı =
// bu seq'ten sonraki, başkası tarafından yazılmış mesaj sayısı.
// Unread durumu bu sayede (kanal, katılımcı) çifti başına takip edilir —
// tek bir kanal-seviyesi sayaç birden fazla kullanıcıyı temsil edemez.
type ReadState struct {
	UserID      string    `json:"user_id"`
	ChannelID   string    `json:"channel_id"`
	LastReadSeq int64     `json:"last_read_seq"`
	LastReadAt  time.Time `json:"last_read_at"`
}

// UnreadInfo, bir kanalın okunmamış mesaj bilgisini taşır.
// Frontend'de sidebar badge'i için kullanılır.
type UnreadInfo struct {
	ChannelID   string `json:"channel_id"`
	UnreadCount int    `json:"unread_count"`
}
