package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrIdentityNotFound, "用户 42 无画像")
	suite.NotNil(err)
	suite.Equal(ErrIdentityNotFound, err.Code)
	suite.Equal("玩家画像不存在", err.Message)
	suite.Equal("用户 42 无画像", err.Details)

	// 测试多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost", "端口: 5432")
	suite.Equal("连接失败; 主机: localhost; 端口: 5432", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidParam, "参数 %s 的值 %d 无效", "count", -1)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("参数 count 的值 -1 无效", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError（保留原始错误码）
	appErr := New(ErrNotFound, "资源不存在")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试错误判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrSessionClosed)
	suite.True(Is(err, ErrSessionClosed))
	suite.False(Is(err, ErrSessionNotFound))
	suite.False(Is(nil, ErrSessionClosed))
	suite.False(Is(errors.New("普通错误"), ErrSessionClosed))
}

// 测试错误码提取
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrGameNotFound, GetCode(New(ErrGameNotFound)))
	suite.Equal(ErrUnknown, GetCode(errors.New("普通错误")))
}

// 测试Unwrap链
func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("底层错误")
	wrappedErr := Wrap(originalErr, ErrTransaction)
	suite.True(errors.Is(wrappedErr, originalErr))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	suite.Equal(400, New(ErrInvalidParam).HTTPStatus())
	suite.Equal(404, New(ErrNotFound).HTTPStatus())
	suite.Equal(401, New(ErrTokenExpired).HTTPStatus())
	suite.Equal(429, New(ErrRateLimitExceeded).HTTPStatus())
	suite.Equal(503, New(ErrDatabaseQuery).HTTPStatus())
	suite.Equal(500, New(ErrUnknown).HTTPStatus())
}

// 测试可重试与严重错误判断
func (suite *ErrorsTestSuite) TestRetryableAndCritical() {
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.True(IsRetryable(New(ErrCatalogStale)))
	suite.False(IsRetryable(New(ErrNotFound)))
	suite.False(IsRetryable(nil))

	suite.True(IsCritical(New(ErrConfigLoad)))
	suite.True(IsCritical(New(ErrDataIntegrity)))
	suite.False(IsCritical(New(ErrSessionNotFound)))
}

// TestErrorsTestSuite 运行测试套件
func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
