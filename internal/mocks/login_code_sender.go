package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockLoginCodeSender is a testify mock for login-code delivery.
type MockLoginCodeSender struct {
	mock.Mock
}

// SendLoginCode records the call and returns the configured error.
func (m *MockLoginCodeSender) SendLoginCode(
	ctx context.Context,
	user *domain.User,
	code string,
	ttl time.Duration,
) error {
	args := m.Called(ctx, user, code, ttl)
	return args.Error(0)
}

// LastCode returns the code passed to the most recent SendLoginCode call.
func (m *MockLoginCodeSender) LastCode() string {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "SendLoginCode" {
			code, _ := m.Calls[i].Arguments.Get(2).(string)
			return code
		}
	}
	return ""
}
