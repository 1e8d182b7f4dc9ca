package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/game-library/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthServiceTestSuite 认证服务测试套件
type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authService AuthService
	userService UserService
}

// SetupSuite 设置测试套件
func (suite *AuthServiceTestSuite) SetupSuite() {
	suite.db = repository.SetupTestDB()

	config := DefaultConfig()
	log := zap.NewNop()

	services := NewServices(suite.db, config, log)
	suite.authService = services.Auth
	suite.userService = services.User
}

// SetupTest 每个测试前执行
func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM user_sessions")
	suite.db.Exec("DELETE FROM user_auths")
	suite.db.Exec("DELETE FROM users")
}

// TestRegister 测试注册
func (suite *AuthServiceTestSuite) TestRegister() {
	ctx := context.Background()

	req := &RegisterRequest{
		Username:        "testuser",
		Email:           "test@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Nickname:        "Test User",
	}

	resp, err := suite.authService.Register(ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), resp)
	assert.NotEmpty(suite.T(), resp.AccessToken)
	assert.NotEmpty(suite.T(), resp.RefreshToken)
	assert.Equal(suite.T(), "testuser", resp.User.Username)
	assert.Equal(suite.T(), "test@example.com", resp.User.Email)

	// 验证用户已创建
	user, err := suite.userService.GetUserByUsername(ctx, "testuser")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), user)
}

// TestRegisterDuplicateUsername 测试重复用户名注册
func (suite *AuthServiceTestSuite) TestRegisterDuplicateUsername() {
	ctx := context.Background()

	req1 := &RegisterRequest{
		Username:        "testuser",
		Email:           "test1@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}

	_, err := suite.authService.Register(ctx, req1)
	assert.NoError(suite.T(), err)

	// 用户名重复
	req2 := &RegisterRequest{
		Username:        "testuser",
		Email:           "test2@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
	_, err = suite.authService.Register(ctx, req2)
	assert.Error(suite.T(), err)
}

// TestRegisterInvalidInput 测试非法注册输入
func (suite *AuthServiceTestSuite) TestRegisterInvalidInput() {
	ctx := context.Background()

	// 用户名太短
	_, err := suite.authService.Register(ctx, &RegisterRequest{
		Username:        "ab",
		Email:           "test@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.Error(suite.T(), err)

	// 两次密码不一致
	_, err = suite.authService.Register(ctx, &RegisterRequest{
		Username:        "testuser",
		Email:           "test@example.com",
		Password:        "password123",
		ConfirmPassword: "password456",
	})
	assert.Error(suite.T(), err)
}

// TestLogin 测试登录
func (suite *AuthServiceTestSuite) TestLogin() {
	ctx := context.Background()

	_, err := suite.authService.Register(ctx, &RegisterRequest{
		Username:        "loginuser",
		Email:           "login@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.NoError(suite.T(), err)

	// 用户名登录
	resp, err := suite.authService.Login(ctx, &LoginRequest{
		Account:  "loginuser",
		Password: "password123",
	})
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.AccessToken)

	// 邮箱登录
	resp, err = suite.authService.Login(ctx, &LoginRequest{
		Account:  "login@example.com",
		Password: "password123",
	})
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), resp.AccessToken)

	// 密码错误
	_, err = suite.authService.Login(ctx, &LoginRequest{
		Account:  "loginuser",
		Password: "wrongpassword",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

// TestValidateToken 测试令牌验证
func (suite *AuthServiceTestSuite) TestValidateToken() {
	ctx := context.Background()

	resp, err := suite.authService.Register(ctx, &RegisterRequest{
		Username:        "tokenuser",
		Email:           "token@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.NoError(suite.T(), err)

	claims, err := suite.authService.ValidateToken(ctx, resp.AccessToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), resp.User.ID, claims.UserID)
	assert.Equal(suite.T(), "tokenuser", claims.Username)

	// 无效令牌
	_, err = suite.authService.ValidateToken(ctx, "not-a-token")
	assert.Error(suite.T(), err)
}

// TestRefreshToken 测试刷新令牌
func (suite *AuthServiceTestSuite) TestRefreshToken() {
	ctx := context.Background()

	resp, err := suite.authService.Register(ctx, &RegisterRequest{
		Username:        "refreshuser",
		Email:           "refresh@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.NoError(suite.T(), err)

	newResp, err := suite.authService.RefreshToken(ctx, resp.RefreshToken)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), newResp.AccessToken)

	// 访问令牌不能用于刷新
	_, err = suite.authService.RefreshToken(ctx, resp.AccessToken)
	assert.Error(suite.T(), err)
}

// TestLogout 测试登出
func (suite *AuthServiceTestSuite) TestLogout() {
	ctx := context.Background()

	resp, err := suite.authService.Register(ctx, &RegisterRequest{
		Username:        "logoutuser",
		Email:           "logout@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.NoError(suite.T(), err)

	err = suite.authService.Logout(ctx, resp.User.ID, resp.AccessToken)
	assert.NoError(suite.T(), err)

	// 登出后令牌校验失败（会话已删除）
	_, err = suite.authService.ValidateToken(ctx, resp.AccessToken)
	assert.Error(suite.T(), err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
