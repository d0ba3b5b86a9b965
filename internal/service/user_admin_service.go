package service

import (
	"strings"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/repository"
)

// UserAdminService 用户后台管理服务
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService 创建用户后台服务
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// List 用户列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Get 用户详情
func (s *UserAdminService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetStatus 启用/禁用用户
func (s *UserAdminService) SetStatus(id uint, status string) (*models.User, error) {
	status = strings.TrimSpace(status)
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrUserStatusInvalid
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
