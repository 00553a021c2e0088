package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/validator"
)

const defaultDreamPageSize = 50

// SubmissionState - этапы одной отправки
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionOptimistic SubmissionState = "optimistic"
	SubmissionReconciled SubmissionState = "reconciled"
	SubmissionRolledBack SubmissionState = "rolled_back"
)

// DreamDraft - данные формы.
// AccessibleForm включает обязательное согласие с политикой конфиденциальности.
type DreamDraft struct {
	DreamerName        string   `json:"dreamer_name" validate:"required,max=100"`
	OriginStation      string   `json:"origin_station" validate:"required,max=100"`
	OriginCountry      *string  `json:"origin_country"`
	OriginLat          *float64 `json:"origin_lat" validate:"omitempty,min=-90,max=90"`
	OriginLng          *float64 `json:"origin_lng" validate:"omitempty,min=-180,max=180"`
	DestinationCity    string   `json:"destination_city" validate:"required,max=100"`
	DestinationCountry *string  `json:"destination_country"`
	DestinationLat     *float64 `json:"destination_lat" validate:"omitempty,min=-90,max=90"`
	DestinationLng     *float64 `json:"destination_lng" validate:"omitempty,min=-180,max=180"`
	Email              string   `json:"email" validate:"required_if=JoinPajamaParty true,omitempty,email"`
	JoinPajamaParty    bool     `json:"join_pajama_party"`
	AccessibleForm     bool     `json:"accessible_form"`
	PrivacyConsent     bool     `json:"privacy_consent" validate:"required_if=AccessibleForm true"`
}

func (d DreamDraft) trimmed() DreamDraft {
	d.DreamerName = strings.TrimSpace(d.DreamerName)
	d.OriginStation = strings.TrimSpace(d.OriginStation)
	d.DestinationCity = strings.TrimSpace(d.DestinationCity)
	d.Email = strings.TrimSpace(d.Email)
	return d
}

// Validate проверяет черновик так же, как форма перед отправкой
func (d DreamDraft) Validate() error {
	err := validator.Validate(d.trimmed())
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		for field, msg := range appErr.Details {
			fields[field] = fmt.Sprint(msg)
		}
	}
	if len(fields) == 0 {
		fields["form"] = "is invalid"
	}
	return &ValidationError{Fields: fields}
}

func (d DreamDraft) payload() DreamPayload {
	return DreamPayload{
		DreamerName:        d.DreamerName,
		OriginStation:      d.OriginStation,
		OriginCountry:      d.OriginCountry,
		OriginLat:          d.OriginLat,
		OriginLng:          d.OriginLng,
		DestinationCity:    d.DestinationCity,
		DestinationCountry: d.DestinationCountry,
		DestinationLat:     d.DestinationLat,
		DestinationLng:     d.DestinationLng,
		Email:              d.Email,
		JoinPajamaParty:    d.JoinPajamaParty,
	}
}

// DreamAPI - то, что нужно DreamStore от Client
type DreamAPI interface {
	CreateDream(ctx context.Context, payload DreamPayload) (*SubmitResult, error)
	ListDreams(ctx context.Context, limit, offset int) (*DreamPage, error)
}

// DreamStore - список мечт с оптимистичными вставками
type DreamStore struct {
	api          DreamAPI
	pageSize     int
	onRefresh    func(ctx context.Context)
	onChange     func([]domain.Dream)
	onSubmission func(tempID string, state SubmissionState)
	logger       *zap.Logger

	mu               sync.Mutex
	dreams           []domain.Dream
	total            int
	communityMessage *string
	lastTempMillis   int64
	fetchSeq         uint64
	appliedSeq       uint64
}

// DreamStoreOption настраивает DreamStore
type DreamStoreOption func(*DreamStore)

// WithRefresh - что обновить после успешной отправки (например, слои карты)
func WithRefresh(fn func(ctx context.Context)) DreamStoreOption {
	return func(s *DreamStore) { s.onRefresh = fn }
}

func WithDreamsChanged(fn func([]domain.Dream)) DreamStoreOption {
	return func(s *DreamStore) { s.onChange = fn }
}

// WithSubmissionObserver - переходы состояния каждой отправки
func WithSubmissionObserver(fn func(tempID string, state SubmissionState)) DreamStoreOption {
	return func(s *DreamStore) { s.onSubmission = fn }
}

func WithPageSize(n int) DreamStoreOption {
	return func(s *DreamStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithDreamLogger(l *zap.Logger) DreamStoreOption {
	return func(s *DreamStore) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewDreamStore(api DreamAPI, opts ...DreamStoreOption) *DreamStore {
	s := &DreamStore{
		api:      api,
		pageSize: defaultDreamPageSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load загружает первую страницу. Оптимистичные записи остаются сверху
func (s *DreamStore) Load(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

// fetch загружает первую страницу. Ответ, запрошенный раньше уже
// примененного, отбрасывается
func (s *DreamStore) fetch(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	page, err := s.api.ListDreams(ctx, s.pageSize, 0)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if seq < s.appliedSeq {
		s.mu.Unlock()
		return false, nil
	}
	s.appliedSeq = seq
	s.replaceLocked(page)
	dreams := s.copyLocked()
	s.mu.Unlock()

	s.changed(dreams)
	return true, nil
}

// Submit валидирует черновик, сразу добавляет временную запись и отправляет мечту.
// Отправку нельзя отменить: запрос доводится до конца даже при отмене ctx.
// Повторных попыток нет.
func (s *DreamStore) Submit(ctx context.Context, draft DreamDraft) (*SubmitResult, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	draft = draft.trimmed()

	// 1. Оптимистичная запись до сетевого вызова
	now := time.Now().UTC()
	optimistic := domain.Dream{
		DreamerName:        draft.DreamerName,
		OriginStation:      draft.OriginStation,
		OriginCountry:      draft.OriginCountry,
		OriginLat:          draft.OriginLat,
		OriginLng:          draft.OriginLng,
		DestinationCity:    draft.DestinationCity,
		DestinationCountry: draft.DestinationCountry,
		DestinationLat:     draft.DestinationLat,
		DestinationLng:     draft.DestinationLng,
	}
	optimistic.StampCreated(now)

	s.mu.Lock()
	optimistic.ID = s.nextTempIDLocked(now)
	s.dreams = append([]domain.Dream{optimistic}, s.dreams...)
	dreams := s.copyLocked()
	s.mu.Unlock()

	tempID := optimistic.ID
	s.transition(tempID, SubmissionOptimistic)
	s.changed(dreams)

	// 2. Запрос
	apiCtx := context.WithoutCancel(ctx)
	result, err := s.api.CreateDream(apiCtx, draft.payload())
	if err != nil {
		// 3a. Откат
		s.mu.Lock()
		s.removeLocked(tempID)
		dreams = s.copyLocked()
		s.mu.Unlock()

		s.transition(tempID, SubmissionRolledBack)
		s.changed(dreams)
		s.logger.Warn("Dream submission failed", zap.String("temp_id", tempID), zap.Error(err))
		return nil, err
	}

	// 3b. Замена временной записи серверной
	s.mu.Lock()
	s.replaceTempLocked(tempID, result.Dream.Public())
	s.total++
	if result.CommunityMessage != nil && *result.CommunityMessage != "" {
		msg := *result.CommunityMessage
		s.communityMessage = &msg
	}
	dreams = s.copyLocked()
	s.mu.Unlock()

	s.transition(tempID, SubmissionReconciled)
	s.changed(dreams)

	// 4. Сверка со списком сервера
	if _, err := s.fetch(apiCtx); err != nil {
		s.logger.Warn("Failed to refetch dreams after submission", zap.Error(err))
	}

	if s.onRefresh != nil {
		s.onRefresh(apiCtx)
	}

	return result, nil
}

// TakeCommunityMessage возвращает сообщение о сообществе один раз
func (s *DreamStore) TakeCommunityMessage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.communityMessage == nil {
		return "", false
	}
	msg := *s.communityMessage
	s.communityMessage = nil
	return msg, true
}

// Dreams - копия текущего списка
func (s *DreamStore) Dreams() []domain.Dream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Total - общее число мечт на сервере
func (s *DreamStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// nextTempIDLocked - temp-<millis>; две отправки в одну миллисекунду получают разные ID
func (s *DreamStore) nextTempIDLocked(now time.Time) string {
	millis := now.UnixMilli()
	if millis <= s.lastTempMillis {
		millis = s.lastTempMillis + 1
	}
	s.lastTempMillis = millis
	return domain.TempDreamIDPrefix + strconv.FormatInt(millis, 10)
}

func (s *DreamStore) replaceLocked(page *DreamPage) {
	dreams := make([]domain.Dream, 0, len(page.Dreams)+1)
	for _, d := range s.dreams {
		if d.IsOptimistic() {
			dreams = append(dreams, d)
		}
	}
	for _, d := range page.Dreams {
		dreams = append(dreams, d.Public())
	}
	s.dreams = dreams
	s.total = page.Total
}

func (s *DreamStore) removeLocked(id string) {
	for i, d := range s.dreams {
		if d.ID == id {
			s.dreams = append(s.dreams[:i], s.dreams[i+1:]...)
			return
		}
	}
}

// replaceTempLocked меняет временную запись на серверную.
// Если серверная уже пришла с другой перезагрузкой списка, временная просто удаляется.
func (s *DreamStore) replaceTempLocked(tempID string, dream domain.Dream) {
	for _, d := range s.dreams {
		if d.ID == dream.ID {
			s.removeLocked(tempID)
			return
		}
	}
	for i, d := range s.dreams {
		if d.ID == tempID {
			s.dreams[i] = dream
			return
		}
	}
	s.dreams = append([]domain.Dream{dream}, s.dreams...)
}

func (s *DreamStore) copyLocked() []domain.Dream {
	return append([]domain.Dream(nil), s.dreams...)
}

func (s *DreamStore) transition(tempID string, state SubmissionState) {
	if s.onSubmission != nil {
		s.onSubmission(tempID, state)
	}
}

func (s *DreamStore) changed(dreams []domain.Dream) {
	if s.onChange != nil {
		s.onChange(dreams)
	}
}
