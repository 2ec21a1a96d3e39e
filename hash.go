package epubtl

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// DefaultCachePath derives a cache file location for a book and language
// pair. The name depends only on its inputs, so repeated runs on the same
// book reuse the same cache:
//
//	/books/novel.epub, en-US, zh-CN → /books/novel.en-US.zh-CN.<hash>.json
func DefaultCachePath(bookPath, sourceLang, targetLang string) string {
	abs, err := filepath.Abs(bookPath)
	if err != nil {
		abs = bookPath
	}
	src, tgt := NormalizeLang(sourceLang), NormalizeLang(targetLang)
	key := HashText(abs + "\x00" + src + "\x00" + tgt)

	base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	name := base + "." + src + "." + tgt + "." + key[:12] + ".json"
	return filepath.Join(filepath.Dir(abs), name)
}
