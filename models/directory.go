package models

// Directory modelleri — mention aramasının sorguladığı harici dizinlerin
// yerel kopyaları. Bu kayıtların sahibi console'un CRUD servisleridir;
// bu çekirdek onları sadece okur (arama + display name çözümleme).

// DirectoryUser, kullanıcı dizinindeki bir kayıt.
type DirectoryUser struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       *string `json:"email,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Position    string  `json:"position"` // Ünvan — suggestion subtitle olarak gösterilir
	Status      string  `json:"status"`   // online/offline — e-posta bildirimi kararı için
}

// DirectoryTask, görev dizinindeki bir kayıt.
type DirectoryTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// DirectoryProject, proje dizinindeki bir kayıt.
type DirectoryProject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Progress int    `json:"progress"` // Yüzde (0-100)
}

// Suggestion, mention önerisi listesindeki tek bir satır.
// Subtitle türe özgüdür: user → position, task → status, project → "%N".
type Suggestion struct {
	Kind        MentionKind `json:"kind"`
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Subtitle    string      `json:"subtitle"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
}
