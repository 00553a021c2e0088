package client

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultSearchCacheTTL = 5 * time.Minute
	DefaultSearchCacheMax = 50

	// MinSearchQueryLength - короче запрос не отправляется
	MinSearchQueryLength = 2
)

// StationSearchAPI - то, что нужно поиску от Client
type StationSearchAPI interface {
	SearchStations(ctx context.Context, q StationQuery) ([]domain.Station, error)
}

// SearchOptions - фильтры поиска
type SearchOptions struct {
	Country string
	Limit   int
}

// SearchState - наблюдаемое состояние поиска
type SearchState struct {
	Query   string
	Results []domain.Station
	Loading bool
	Err     string
}

type searchCacheEntry struct {
	stations []domain.Station
	storedAt time.Time
}

// StationSearcher - автодополнение станций: debounce, отмена устаревших
// запросов и ограниченный TTL-кеш
type StationSearcher struct {
	api        StationSearchAPI
	debounce   time.Duration
	ttl        time.Duration
	maxEntries int
	onChange   func(SearchState)
	logger     *zap.Logger

	mu       sync.Mutex
	state    SearchState
	seq      uint64
	timer    *time.Timer
	cancel   context.CancelFunc
	cache    map[string]searchCacheEntry
	requests int
}

// SearcherOption настраивает StationSearcher
type SearcherOption func(*StationSearcher)

func WithDebounce(d time.Duration) SearcherOption {
	return func(s *StationSearcher) { s.debounce = d }
}

func WithCacheTTL(ttl time.Duration) SearcherOption {
	return func(s *StationSearcher) { s.ttl = ttl }
}

func WithCacheSize(n int) SearcherOption {
	return func(s *StationSearcher) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithOnChange - колбэк на каждое изменение состояния; вызывается вне блокировки
func WithOnChange(fn func(SearchState)) SearcherOption {
	return func(s *StationSearcher) { s.onChange = fn }
}

func WithSearchLogger(l *zap.Logger) SearcherOption {
	return func(s *StationSearcher) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewStationSearcher(api StationSearchAPI, opts ...SearcherOption) *StationSearcher {
	s := &StationSearcher{
		api:        api,
		debounce:   DefaultSearchDebounce,
		ttl:        DefaultSearchCacheTTL,
		maxEntries: DefaultSearchCacheMax,
		logger:     zap.NewNop(),
		cache:      make(map[string]searchCacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchCacheKey - нормализованный ключ кеша
func SearchCacheKey(query string, opts SearchOptions) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" +
		strings.ToUpper(strings.TrimSpace(opts.Country)) + "|" +
		strconv.Itoa(opts.Limit)
}

// Search планирует поиск. Каждый вызов отменяет предыдущий: и ожидающий
// debounce, и запрос в полете.
func (s *StationSearcher) Search(query string, opts SearchOptions) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.stopPendingLocked()

	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinSearchQueryLength {
		s.state = SearchState{Query: query, Results: []domain.Station{}}
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(state)
		return
	}

	key := SearchCacheKey(query, opts)
	if stations, ok := s.cachedLocked(key); ok {
		s.state = SearchState{Query: query, Results: stations}
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(state)
		return
	}

	s.state.Query = query
	s.state.Loading = true
	s.state.Err = ""
	state := s.snapshotLocked()

	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(seq, trimmed, opts, key)
	})
	s.mu.Unlock()

	s.notify(state)
}

func (s *StationSearcher) run(seq uint64, query string, opts SearchOptions, key string) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.requests++
	s.mu.Unlock()
	defer cancel()

	stations, err := s.api.SearchStations(ctx, StationQuery{
		Query:   query,
		Country: opts.Country,
		Limit:   opts.Limit,
	})

	s.mu.Lock()
	// Ответ на устаревший запрос отбрасываем
	if seq != s.seq || errors.Is(err, context.Canceled) {
		s.mu.Unlock()
		return
	}
	s.cancel = nil

	if err != nil {
		s.logger.Warn("Station search failed", zap.String("query", query), zap.Error(err))
		s.state = SearchState{Query: s.state.Query, Results: []domain.Station{}, Err: UserMessage(err)}
	} else {
		s.storeLocked(key, stations)
		s.state = SearchState{Query: s.state.Query, Results: stations}
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// State - текущее состояние
func (s *StationSearcher) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Requests - сколько запросов ушло на сервер
func (s *StationSearcher) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Close отменяет ожидающий и текущий запросы
func (s *StationSearcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.stopPendingLocked()
	s.state.Loading = false
}

func (s *StationSearcher) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *StationSearcher) cachedLocked(key string) ([]domain.Station, bool) {
	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > s.ttl {
		delete(s.cache, key)
		return nil, false
	}
	return entry.stations, true
}

// storeLocked кладет результат в кеш; при переполнении вытесняется самая старая запись
func (s *StationSearcher) storeLocked(key string, stations []domain.Station) {
	if _, exists := s.cache[key]; !exists && len(s.cache) >= s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.cache {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(s.cache, oldestKey)
	}
	s.cache[key] = searchCacheEntry{stations: stations, storedAt: time.Now()}
}

func (s *StationSearcher) snapshotLocked() SearchState {
	state := s.state
	state.Results = append([]domain.Station(nil), s.state.Results...)
	return state
}

func (s *StationSearcher) notify(state SearchState) {
	if s.onChange != nil {
		s.onChange(state)
	}
}
