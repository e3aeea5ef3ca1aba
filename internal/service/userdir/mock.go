package userdir

import (
	"sync"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// MockDirectory — конфигурируемая заглушка UserDirectory.
// Служит и тестам, и локальному запуску без внешнего справочника пользователей.
type MockDirectory struct {
	mu    sync.RWMutex
	users map[int64]domain.User

	FindErr   error
	FindCalls int
}

// NewMockDirectory возвращает справочник с заранее заведёнными пользователями.
func NewMockDirectory(users ...domain.User) *MockDirectory {
	m := &MockDirectory{users: make(map[int64]domain.User, len(users))}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

// NewSeededDirectory возвращает справочник с демонстрационными пользователями
// для локального запуска сервиса.
func NewSeededDirectory() *MockDirectory {
	return NewMockDirectory(
		domain.User{ID: 1, Email: "alice@example.com", FullName: "Alice Johnson"},
		domain.User{ID: 2, Email: "bob@example.com", FullName: "Bob Smith"},
		domain.User{ID: 3, Email: "carol@example.com", FullName: "Carol Davis", Locked: true},
	)
}

// Put добавляет или заменяет пользователя в справочнике.
func (m *MockDirectory) Put(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// FindByID возвращает пользователя, настроенную ошибку или ErrUserNotFound.
func (m *MockDirectory) FindByID(id int64) (domain.User, error) {
	m.mu.Lock()
	m.FindCalls++
	m.mu.Unlock()

	if m.FindErr != nil {
		return domain.User{}, m.FindErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

var _ domain.UserDirectory = (*MockDirectory)(nil)
