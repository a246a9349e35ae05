// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir (string taşıyan struct'lar).
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrChannelNotFound) { ... }
//
// Bu, typo'ya açık string karşılaştırmasından çok daha güvenlidir.
package pkg

import "errors"

// Generic error'lar — handler katmanı bunları HTTP status code'larına map'ler.
// Service katmanı bunları döner (gerekirse %w ile detay ekleyerek), handler yakalar.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

// Mesajlaşma çekirdeğinin domain error'ları.
//
// ErrMentionAmbiguous fatal değildir — send-time çözümlemede aynı display name
// birden fazla directory kaydıyla eşleşirse loglanır ve ilk eşleşme kazanır.
// ErrUploadFailure, mesaja bağlanmak istenen bir attachment'ın hiç yüklenmemiş
// veya başka bir mesaj tarafından sahiplenilmiş olduğunu belirtir; bu durumda
// mesaj satırı hiç oluşturulmaz, compose akışı bozulmaz.
var (
	ErrChannelNotFound   = errors.New("channel not found")
	ErrInvalidName       = errors.New("invalid channel name")
	ErrInvalidTransition = errors.New("channel type is immutable")
	ErrMentionAmbiguous  = errors.New("ambiguous mention")
	ErrUploadFailure     = errors.New("upload failed")
)
