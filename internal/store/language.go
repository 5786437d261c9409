package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/model"
)

// LanguageStore persists the UI language preference.
type LanguageStore struct {
	kv *Store

	mu     sync.Mutex
	cached model.Language
}

// Get returns the saved language, defaulting to English when nothing valid is stored.
func (l *LanguageStore) Get(ctx context.Context) model.Language {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != "" {
		return l.cached
	}

	l.cached = model.LanguageEnglish
	raw, ok, err := l.kv.GetValue(ctx, config.StorageKey.Language)
	if err != nil {
		l.kv.log.Warn().Err(err).Msg("read language failed; using default")
		return l.cached
	}
	if ok && model.Language(raw).Valid() {
		l.cached = model.Language(raw)
	}
	return l.cached
}

// Set saves lang.
func (l *LanguageStore) Set(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}
	if err := l.kv.SetValue(ctx, config.StorageKey.Language, string(lang)); err != nil {
		return err
	}
	l.mu.Lock()
	l.cached = lang
	l.mu.Unlock()
	return nil
}
