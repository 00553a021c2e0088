package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

// ErrConsentRequired - пользователь не дал согласия на аналитику
var ErrConsentRequired = errors.New("analytics consent not granted")

// ConsentStore хранит флаг согласия на аналитику
type ConsentStore interface {
	Consent() (bool, error)
	SetConsent(granted bool) error
}

// MemoryConsentStore - согласие только на время сессии
type MemoryConsentStore struct {
	mu      sync.RWMutex
	granted bool
}

func NewMemoryConsentStore(granted bool) *MemoryConsentStore {
	return &MemoryConsentStore{granted: granted}
}

func (s *MemoryConsentStore) Consent() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted, nil
}

func (s *MemoryConsentStore) SetConsent(granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.granted = granted
	return nil
}

type consentFile struct {
	AnalyticsConsent bool      `json:"analytics_consent"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FileConsentStore - согласие в JSON файле. Нет файла - нет согласия
type FileConsentStore struct {
	path string
	mu   sync.Mutex
}

func NewFileConsentStore(path string) *FileConsentStore {
	return &FileConsentStore{path: path}
}

func (s *FileConsentStore) Consent() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read consent: %w", err)
	}

	var f consentFile
	if err := json.Unmarshal(data, &f); err != nil {
		return false, fmt.Errorf("parse consent: %w", err)
	}
	return f.AnalyticsConsent, nil
}

func (s *FileConsentStore) SetConsent(granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(consentFile{AnalyticsConsent: granted, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create consent dir: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить обрезанный JSON
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write consent: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// AnalyticsAPI - то, что нужно Analytics от Client
type AnalyticsAPI interface {
	TrackEvent(ctx context.Context, event Event) error
	Advocacy(ctx context.Context, limit int) (*domain.AdvocacySummary, error)
}

// Analytics - телеметрия по согласию. Без согласия сетевых вызовов нет
type Analytics struct {
	api       AnalyticsAPI
	consent   ConsentStore
	sessionID string
	logger    *zap.Logger
}

func NewAnalytics(api AnalyticsAPI, consent ConsentStore, logger *zap.Logger) *Analytics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analytics{
		api:       api,
		consent:   consent,
		sessionID: uuid.NewString(),
		logger:    logger,
	}
}

// SessionID - анонимный идентификатор сессии
func (a *Analytics) SessionID() string {
	return a.sessionID
}

// Track отправляет событие. Возвращает false, если согласия нет
func (a *Analytics) Track(ctx context.Context, eventType string, properties map[string]interface{}) (bool, error) {
	if !a.granted() {
		return false, nil
	}

	err := a.api.TrackEvent(ctx, Event{
		EventType:  eventType,
		SessionID:  a.sessionID,
		Properties: properties,
		Consent:    true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Advocacy - сводка для кампании; без согласия ErrConsentRequired
func (a *Analytics) Advocacy(ctx context.Context, limit int) (*domain.AdvocacySummary, error) {
	if !a.granted() {
		return nil, ErrConsentRequired
	}
	return a.api.Advocacy(ctx, limit)
}

func (a *Analytics) granted() bool {
	ok, err := a.consent.Consent()
	if err != nil {
		a.logger.Warn("Failed to read analytics consent", zap.Error(err))
		return false
	}
	return ok
}
