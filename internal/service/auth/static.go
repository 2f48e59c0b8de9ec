package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// ErrTokenInvalid возвращается для неизвестного или пустого токена.
var ErrTokenInvalid = errors.New("invalid auth token")

// StaticService — заглушка внешнего auth-коллаборатора: проверяет
// непрозрачные токены по статической таблице. Продакшен-реализация живёт
// в отдельном сервисе, движку достаточно контракта Verify.
type StaticService struct {
	mu     sync.RWMutex
	tokens map[string]domain.Actor
}

// NewStaticService возвращает сервис с пустой таблицей токенов.
func NewStaticService() *StaticService {
	return &StaticService{tokens: make(map[string]domain.Actor)}
}

// Register сопоставляет токен участнику; используется сидированием и тестами.
func (s *StaticService) Register(token string, actor domain.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = actor
}

// Verify превращает токен в аутентифицированного участника.
func (s *StaticService) Verify(_ context.Context, token string) (domain.Actor, error) {
	if token == "" {
		return domain.Actor{}, ErrTokenInvalid
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.tokens[token]
	if !ok {
		return domain.Actor{}, ErrTokenInvalid
	}
	return actor, nil
}

var _ domain.AuthService = (*StaticService)(nil)
