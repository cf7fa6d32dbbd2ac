package mocks

import "github.com/aimd54/swachhta-hub/internal/models"

// MockUserRepository is a simple mock for user repository
type MockUserRepository struct {
	GetByIDFunc        func(id uint) (*models.User, error)
	GetTopByPointsFunc func(limit int) ([]models.User, error)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetTopByPoints(limit int) ([]models.User, error) {
	if m.GetTopByPointsFunc != nil {
		return m.GetTopByPointsFunc(limit)
	}
	return []models.User{}, nil
}

// MockCityRepository is a simple mock for city repository
type MockCityRepository struct {
	GetAllFunc        func() ([]models.CityData, error)
	GetTopByScoreFunc func(limit int) ([]models.CityData, error)

	Calls int
}

func (m *MockCityRepository) GetAll() ([]models.CityData, error) {
	m.Calls++
	if m.GetAllFunc != nil {
		return m.GetAllFunc()
	}
	return []models.CityData{}, nil
}

func (m *MockCityRepository) GetTopByScore(limit int) ([]models.CityData, error) {
	m.Calls++
	if m.GetTopByScoreFunc != nil {
		return m.GetTopByScoreFunc(limit)
	}
	return []models.CityData{}, nil
}

// MockCounter answers the per-user count queries behind profile statistics.
type MockCounter struct {
	Completions map[uint]int64
	Badges      map[uint]int64
	Reports     map[uint]int64
	Err         error
}

func (m *MockCounter) CountCompletions(userID uint) (int64, error) {
	return m.Completions[userID], m.Err
}

func (m *MockCounter) GetUserBadgeCount(userID uint) (int64, error) {
	return m.Badges[userID], m.Err
}

func (m *MockCounter) CountByUser(userID uint) (int64, error) {
	return m.Reports[userID], m.Err
}
