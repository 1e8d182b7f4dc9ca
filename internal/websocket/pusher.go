package websocket

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/game-library/internal/engine/mood"
	"github.com/wfunc/game-library/internal/engine/recommend"
	"github.com/wfunc/game-library/internal/models"
)

// Pusher 画像事件推送器
type Pusher struct {
	hub    *Hub
	logger *zap.Logger
}

// NewPusher 创建推送器
func NewPusher(hub *Hub, logger *zap.Logger) *Pusher {
	return &Pusher{
		hub:    hub,
		logger: logger,
	}
}

// PushMoodUpdate 推送心情分析更新
func (p *Pusher) PushMoodUpdate(userID uint, analysis *mood.Analysis) {
	if analysis == nil {
		return
	}
	p.push(userID, MessageTypeMoodUpdate, analysis)
}

// PushIdentityUpdate 推送玩家画像更新
func (p *Pusher) PushIdentityUpdate(userID uint, identity *models.PlayerIdentity) {
	if identity == nil {
		return
	}
	p.push(userID, MessageTypeIdentityUpdate, identity)
}

// PushForecast 推送心情预测
func (p *Pusher) PushForecast(userID uint, forecast *models.MoodForecast) {
	if forecast == nil {
		return
	}
	p.push(userID, MessageTypeForecast, forecast)
}

// PushRecommendations 推送推荐结果
func (p *Pusher) PushRecommendations(userID uint, recs []recommend.Recommendation) {
	if len(recs) == 0 {
		return
	}
	p.push(userID, MessageTypeRecommendation, recs)
}

// push 序列化并发送给指定用户
func (p *Pusher) push(userID uint, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("序列化推送数据失败",
			zap.String("type", msgType),
			zap.Error(err))
		return
	}

	msg := &Message{
		Type:      msgType,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	if err := p.hub.SendToUser(userID, msg); err != nil {
		// 用户不在线是正常情况
		if err != ErrUserNotConnected {
			p.logger.Warn("推送消息失败",
				zap.Uint("user_id", userID),
				zap.String("type", msgType),
				zap.Error(err))
		}
	}
}
