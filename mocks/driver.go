package mocks

import (
	"context"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/stretchr/testify/mock"
)

type MockDriver struct {
	mock.Mock
}

func (m *MockDriver) ZoneStatus(ctx context.Context, zone monoprice.ZoneID) (monoprice.State, error) {
	args := m.Called(ctx, zone)
	return args.Get(0).(monoprice.State), args.Error(1)
}

func (m *MockDriver) SetPower(ctx context.Context, zone monoprice.ZoneID, on bool) error {
	return m.Called(ctx, zone, on).Error(0)
}

func (m *MockDriver) SetMute(ctx context.Context, zone monoprice.ZoneID, mute bool) error {
	return m.Called(ctx, zone, mute).Error(0)
}

func (m *MockDriver) SetVolume(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return m.Called(ctx, zone, level).Error(0)
}

func (m *MockDriver) SetTreble(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return m.Called(ctx, zone, level).Error(0)
}

func (m *MockDriver) SetBass(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return m.Called(ctx, zone, level).Error(0)
}

func (m *MockDriver) SetBalance(ctx context.Context, zone monoprice.ZoneID, level int) error {
	return m.Called(ctx, zone, level).Error(0)
}

func (m *MockDriver) SetSource(ctx context.Context, zone monoprice.ZoneID, source int) error {
	return m.Called(ctx, zone, source).Error(0)
}

func (m *MockDriver) Restore(ctx context.Context, zone monoprice.ZoneID, state monoprice.State) error {
	return m.Called(ctx, zone, state).Error(0)
}
