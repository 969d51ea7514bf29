package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendVerifyCodeMail(email, username, code string) error {
	args := m.Called(email, username, code)
	return args.Error(0)
}
